package models

// FichaSequence is the per-year counter backing ficha number assignment.
// Incrementing the row inside the save transaction guarantees two concurrent
// creations never observe the same number, which a count-rows-and-add-one
// scheme cannot.
type FichaSequence struct {
	Year       int `gorm:"primarykey" json:"year"`
	LastNumber int `gorm:"not null;default:0" json:"last_number"`
}

// TableName specifies the table name for FichaSequence model
func (FichaSequence) TableName() string {
	return "ficha_sequences"
}
