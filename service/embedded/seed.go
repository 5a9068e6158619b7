package embedded

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syp1xd/food-ordering-app/models"
)

// menuFile is the YAML layout accepted by LoadMenu.
type menuFile struct {
	Items []*models.MenuItemCreate `yaml:"items"`
}

// DefaultMenu returns the built-in starter catalog.
func DefaultMenu() []*models.MenuItemCreate {
	item := func(name, description string, price float64, imageURL string) *models.MenuItemCreate {
		return &models.MenuItemCreate{
			Name:        name,
			Description: &description,
			Price:       price,
			ImageURL:    &imageURL,
		}
	}

	return []*models.MenuItemCreate{
		item("Margherita Pizza", "Classic cheese and tomato pizza", 12.99,
			"https://images.unsplash.com/photo-1574071318508-1cdbab80d002?w=400"),
		item("Cheeseburger", "Juicy beef patty with cheese", 8.99,
			"https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=400"),
		item("Caesar Salad", "Fresh romaine with Caesar dressing", 6.99,
			"https://images.unsplash.com/photo-1550304943-4f24f54ddde9?w=400"),
		item("Sushi Platter", "Assorted fresh sushi", 15.99,
			"https://images.unsplash.com/photo-1579871494447-9811cf80d66c?w=400"),
		item("Pasta Carbonara", "Creamy Italian pasta", 11.99,
			"https://images.unsplash.com/photo-1612874742237-6526221588e3?w=400"),
	}
}

// LoadMenu parses a YAML menu of the form:
//
//	items:
//	  - name: Margherita Pizza
//	    price: 12.99
func LoadMenu(r io.Reader) ([]*models.MenuItemCreate, error) {
	var f menuFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}
	return f.Items, nil
}

// LoadMenuFile reads a YAML menu from path.
func LoadMenuFile(path string) ([]*models.MenuItemCreate, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open menu file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return LoadMenu(f)
}
