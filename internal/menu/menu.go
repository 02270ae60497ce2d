// Package menu holds the static restaurant catalog. It is reference data:
// never mutated at runtime, and the authoritative source for item names and
// prices when orders are created.
package menu

import "github.com/shopspring/decimal"

// Item is a single orderable dish.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// Category groups items for display.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var catalog = []Category{
	{
		Name: "Antipasti",
		Items: []Item{
			{ID: "ant-1", Name: "Involtino Primavera", Price: price("2.00"), Category: "Antipasti"},
			{ID: "ant-2", Name: "Nuvolette di Gamberi", Price: price("2.00"), Category: "Antipasti"},
			{ID: "ant-3", Name: "Ravioli al vapore", Price: price("4.00"), Category: "Antipasti"},
			{ID: "ant-4", Name: "Ravioli alla griglia", Price: price("4.30"), Category: "Antipasti"},
			{ID: "ant-5", Name: "Ravioli con gamberi e carne", Price: price("4.30"), Category: "Antipasti"},
		},
	},
	{
		Name: "Primi Piatti",
		Items: []Item{
			{ID: "pri-1", Name: "Riso bianco", Price: price("2.50"), Category: "Primi Piatti"},
			{ID: "pri-2", Name: "Riso saltato alla cantonese", Price: price("4.00"), Category: "Primi Piatti"},
			{ID: "pri-3", Name: "Riso con gamberi", Price: price("4.50"), Category: "Primi Piatti"},
			{ID: "pri-4", Name: "Riso con verdure", Price: price("4.00"), Category: "Primi Piatti"},
			{ID: "pri-5", Name: "Riso al curry", Price: price("4.00"), Category: "Primi Piatti"},
			{ID: "pri-6", Name: "Gnocchi di riso con verdura", Price: price("4.80"), Category: "Primi Piatti"},
			{ID: "pri-7", Name: "Gnocchi di riso misto mare", Price: price("5.50"), Category: "Primi Piatti"},
			{ID: "pri-8", Name: "Gnocchi di riso misto carne", Price: price("5.50"), Category: "Primi Piatti"},
			{ID: "pri-9", Name: "Spaghetti di riso con verdure", Price: price("4.00"), Category: "Primi Piatti"},
			{ID: "pri-10", Name: "Spaghetti di riso misto mare", Price: price("5.50"), Category: "Primi Piatti"},
			{ID: "pri-11", Name: "Spaghetti di riso misto carne", Price: price("5.00"), Category: "Primi Piatti"},
			{ID: "pri-12", Name: "Spaghetti di soia con verdure (poco piccante)", Price: price("4.00"), Category: "Primi Piatti"},
			{ID: "pri-13", Name: "Spaghetti di soia con carne (poco piccante)", Price: price("5.00"), Category: "Primi Piatti"},
			{ID: "pri-14", Name: "Spaghetti di soia misto mare (poco piccante)", Price: price("5.50"), Category: "Primi Piatti"},
			{ID: "pri-15", Name: "Spaghetti di grano con verdure", Price: price("4.00"), Category: "Primi Piatti"},
			{ID: "pri-16", Name: "Spaghetti di grano misto mare", Price: price("5.50"), Category: "Primi Piatti"},
			{ID: "pri-17", Name: "Spaghetti di grano misto carne", Price: price("5.00"), Category: "Primi Piatti"},
		},
	},
	{
		Name: "Antipasti di pesce",
		Items: []Item{
			{ID: "pes-1", Name: "Calamari fritti", Price: price("6.00"), Category: "Antipasti di pesce"},
			{ID: "pes-2", Name: "Misto di mare saltato", Price: price("7.50"), Category: "Antipasti di pesce"},
			{ID: "pes-3", Name: "Misto di mare fritto", Price: price("7.50"), Category: "Antipasti di pesce"},
		},
	},
	{
		Name: "Gamberetti e gamberoni",
		Items: []Item{
			{ID: "gam-1", Name: "Gamberetti sale e pepe", Price: price("6.00"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-2", Name: "Gamberetti fritti", Price: price("5.50"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-3", Name: "Gamberetti misto verdura", Price: price("5.50"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-4", Name: "Gamberetti fritti in salsa agrodolce", Price: price("5.50"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-5", Name: "Gamberetti al curry", Price: price("5.50"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-6", Name: "Gamberetti piccanti", Price: price("5.50"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-7", Name: "Gamberetti con funghi e bambù", Price: price("5.50"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-8", Name: "Gamberoni alla griglia", Price: price("7.00"), Category: "Gamberetti e gamberoni"},
			{ID: "gam-9", Name: "Gamberoni piccanti", Price: price("7.00"), Category: "Gamberetti e gamberoni"},
		},
	},
	{
		Name: "Pollo",
		Items: []Item{
			{ID: "pol-1", Name: "Pollo con gamberi e funghi", Price: price("5.50"), Category: "Pollo"},
			{ID: "pol-2", Name: "Pollo fritto", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-3", Name: "Pollo fritto al limone", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-4", Name: "Pollo fritto in salsa agrodolce", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-5", Name: "Pollo piccante", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-6", Name: "Pollo al curry", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-7", Name: "Pollo con sedano", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-8", Name: "Pollo con ananas", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-9", Name: "Pollo con mandorle", Price: price("5.50"), Category: "Pollo"},
			{ID: "pol-10", Name: "Pollo con funghi e bambù", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-11", Name: "Pollo con verdura", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-12", Name: "Pollo con zai zai", Price: price("5.00"), Category: "Pollo"},
			{ID: "pol-13", Name: "8 gioielli piccanti (pollo, manzo, maiale e gamberetti)", Price: price("7.00"), Category: "Pollo"},
		},
	},
	{
		Name: "Anatra",
		Items: []Item{
			{ID: "ana-1", Name: "Anatra arrosto", Price: price("7.00"), Category: "Anatra"},
			{ID: "ana-2", Name: "Anatra piccante", Price: price("7.00"), Category: "Anatra"},
			{ID: "ana-3", Name: "Anatra con ananas", Price: price("7.00"), Category: "Anatra"},
			{ID: "ana-4", Name: "Anatra in salsa agrodolce", Price: price("7.00"), Category: "Anatra"},
			{ID: "ana-5", Name: "Anatra con funghi e bambù", Price: price("7.00"), Category: "Anatra"},
		},
	},
	{
		Name: "Maiale",
		Items: []Item{
			{ID: "mai-1", Name: "Maiale piccante", Price: price("5.00"), Category: "Maiale"},
			{ID: "mai-2", Name: "Maiale fritto in salsa agrodolce", Price: price("5.00"), Category: "Maiale"},
			{ID: "mai-3", Name: "Maiale con verdure", Price: price("5.00"), Category: "Maiale"},
			{ID: "mai-4", Name: "Maiale con funghi e bambù", Price: price("5.00"), Category: "Maiale"},
			{ID: "mai-5", Name: "Maiale con zai zai", Price: price("5.00"), Category: "Maiale"},
		},
	},
	{
		Name: "Manzo",
		Items: []Item{
			{ID: "man-1", Name: "Manzo piccante", Price: price("6.00"), Category: "Manzo"},
			{ID: "man-2", Name: "Manzo con funghi e bambù", Price: price("6.00"), Category: "Manzo"},
			{ID: "man-3", Name: "Manzo al curry", Price: price("6.00"), Category: "Manzo"},
			{ID: "man-4", Name: "Manzo in salsa ostrica", Price: price("6.00"), Category: "Manzo"},
			{ID: "man-5", Name: "Manzo con misto verdura", Price: price("6.00"), Category: "Manzo"},
			{ID: "man-6", Name: "Manzo con sedano", Price: price("6.00"), Category: "Manzo"},
			{ID: "man-7", Name: "Manzo con cipolla", Price: price("6.00"), Category: "Manzo"},
			{ID: "man-8", Name: "Manzo con zai zai", Price: price("6.00"), Category: "Manzo"},
		},
	},
}

var byID = func() map[string]Item {
	m := make(map[string]Item)
	for _, cat := range catalog {
		for _, item := range cat.Items {
			m[item.ID] = item
		}
	}
	return m
}()

// Categories returns the full catalog grouped for display.
func Categories() []Category {
	return catalog
}

// Find looks up an item by id. The second return is false for unknown ids.
func Find(id string) (Item, bool) {
	item, ok := byID[id]
	return item, ok
}
