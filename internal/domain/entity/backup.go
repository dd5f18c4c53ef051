package entity

import "time"

// BackupFormat and BackupVersion identify the export document accepted by restore
const (
	BackupFormat  = "salespos-backup"
	BackupVersion = 1
)

// Backup is the full export of the on-device store
type Backup struct {
	Format     string     `json:"format" validate:"required,eq=salespos-backup"`
	Version    int        `json:"version" validate:"required,eq=1"`
	ExportedAt time.Time  `json:"exported_at"`
	Data       BackupData `json:"data"`
}

// BackupData holds the exported collections
type BackupData struct {
	Items        []CatalogItem `json:"items" validate:"dive"`
	Transactions []Transaction `json:"transactions" validate:"dive"`
	Settings     StoreSettings `json:"settings"`
}
