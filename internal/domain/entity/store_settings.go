package entity

// Settings keys, one store record per field
const (
	SettingSellerName     = "sellerName"
	SettingSellerAddress  = "sellerAddress"
	SettingSellerContact  = "sellerContact"
	SettingWebsiteURL     = "websiteUrl"
	SettingReturnPolicy   = "returnPolicy"
	SettingPrinterAddress = "printerAddress"
)

// DefaultReturnPolicy is used until the seller saves their own
const DefaultReturnPolicy = "Returns accepted within 30 days with receipt."

// SettingKeys lists every known settings key
var SettingKeys = []string{
	SettingSellerName,
	SettingSellerAddress,
	SettingSellerContact,
	SettingWebsiteURL,
	SettingReturnPolicy,
	SettingPrinterAddress,
}

// StoreSettings holds the seller identity and device preferences
type StoreSettings struct {
	SellerName     string `json:"seller_name"`
	SellerAddress  string `json:"seller_address"`
	SellerContact  string `json:"seller_contact"`
	WebsiteURL     string `json:"website_url"`
	ReturnPolicy   string `json:"return_policy"`
	PrinterAddress string `json:"printer_address"`
}

// DefaultStoreSettings returns the settings of a fresh install
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{ReturnPolicy: DefaultReturnPolicy}
}

// Snapshot copies the identity fields printed on receipts
func (s StoreSettings) Snapshot() SellerSnapshot {
	return SellerSnapshot{
		Name:         s.SellerName,
		Address:      s.SellerAddress,
		Contact:      s.SellerContact,
		Website:      s.WebsiteURL,
		ReturnPolicy: s.ReturnPolicy,
	}
}

// ToMap flattens the settings into key/value records
func (s StoreSettings) ToMap() map[string]string {
	return map[string]string{
		SettingSellerName:     s.SellerName,
		SettingSellerAddress:  s.SellerAddress,
		SettingSellerContact:  s.SellerContact,
		SettingWebsiteURL:     s.WebsiteURL,
		SettingReturnPolicy:   s.ReturnPolicy,
		SettingPrinterAddress: s.PrinterAddress,
	}
}

// StoreSettingsFromMap builds settings from key/value records, applying defaults
// for keys that were never saved.
func StoreSettingsFromMap(m map[string]string) StoreSettings {
	s := DefaultStoreSettings()
	s.SellerName = m[SettingSellerName]
	s.SellerAddress = m[SettingSellerAddress]
	s.SellerContact = m[SettingSellerContact]
	s.WebsiteURL = m[SettingWebsiteURL]
	if v, ok := m[SettingReturnPolicy]; ok && v != "" {
		s.ReturnPolicy = v
	}
	s.PrinterAddress = m[SettingPrinterAddress]
	return s
}
