package models

import "strings"

// Cuisine labels shown on restaurant cards.
const (
	CuisineItalian     = "Italian"
	CuisineCafe        = "Café"
	CuisineFarsan      = "Farsan"
	CuisineGujarati    = "Gujarati"
	CuisineSouthIndian = "South Indian"
	CuisinePunjabi     = "Punjabi"
	CuisineChinese     = "Chinese"
	CuisineDefault     = "Restaurant"
)

// RestaurantImages are the stock card images, picked round-robin.
var RestaurantImages = []string{
	"https://images.pexels.com/photos/260922/pexels-photo-260922.jpeg",
	"https://images.pexels.com/photos/67468/pexels-photo-67468.jpeg",
	"https://images.pexels.com/photos/1307698/pexels-photo-1307698.jpeg",
	"https://images.pexels.com/photos/2290070/pexels-photo-2290070.jpeg",
	"https://images.pexels.com/photos/958545/pexels-photo-958545.jpeg",
}

// cuisineKeywords is checked in order; the first hit wins.
var cuisineKeywords = []struct {
	keywords []string
	cuisine  string
}{
	{[]string{"pizza", "italian"}, CuisineItalian},
	{[]string{"coffee", "cafe"}, CuisineCafe},
	{[]string{"farsan"}, CuisineFarsan},
	{[]string{"gujarati"}, CuisineGujarati},
	{[]string{"south", "dosa"}, CuisineSouthIndian},
	{[]string{"punjabi"}, CuisinePunjabi},
	{[]string{"chinese"}, CuisineChinese},
}

// GuessCuisine maps a restaurant name to a cuisine label by keyword.
func GuessCuisine(name string) string {
	lower := strings.ToLower(name)
	for _, c := range cuisineKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.cuisine
			}
		}
	}
	return CuisineDefault
}

// ImageFor returns the card image for the record at the given global index.
func ImageFor(index int) string {
	if index < 0 {
		index = -index
	}
	return RestaurantImages[index%len(RestaurantImages)]
}
