package model

// Item is a single todo entry for one day.
type Item struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Entry pairs an item with its current ordinal.
type Entry struct {
	Ordinal int
	Item
}
