package models

// MenuItem is a catalog entry that orders reference
type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"image_url"`
}

// MenuItemCreate is the request body for adding a menu item
type MenuItemCreate struct {
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description,omitempty" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	ImageURL    *string `json:"image_url,omitempty" yaml:"image_url"`
}
