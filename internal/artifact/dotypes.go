package artifact

import "gorm.io/gorm"

type ArtifactDO struct {
	gorm.Model
	Bundle  string `gorm:"uniqueIndex:unique_artifact;type:VARCHAR(128)"`
	Kind    Kind   `gorm:"uniqueIndex:unique_artifact;type:VARCHAR(32)"`
	Payload []byte `gorm:"not null"`
}
