// media/types.go
package media

type AssetType string

const (
	AssetTypeSnapshot AssetType = "snapshot" // cropped faces awaiting review
	AssetTypeExport   AssetType = "export"   // generated attendance CSV files
	AssetTypeDataset  AssetType = "dataset"  // labeled training images
	AssetTypeUnknown  AssetType = "unknown"
)
