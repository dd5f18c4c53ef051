package request

// UpdateSettingsRequest represents a partial settings update. Omitted fields
// are left unchanged.
type UpdateSettingsRequest struct {
	SellerName     *string `json:"seller_name" binding:"omitempty,max=255"`
	SellerAddress  *string `json:"seller_address" binding:"omitempty,max=500"`
	SellerContact  *string `json:"seller_contact" binding:"omitempty,max=100"`
	WebsiteURL     *string `json:"website_url" binding:"omitempty,max=255"`
	ReturnPolicy   *string `json:"return_policy" binding:"omitempty,max=1000"`
	PrinterAddress *string `json:"printer_address" binding:"omitempty,max=255"`
}
