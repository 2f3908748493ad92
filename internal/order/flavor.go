package order

var flavors = []string{
	"Pistacho",
	"Rocher",
	"Sweet",
	"Velvet",
	"Kinder",
	"Rasta",
	"Cadbury",
	"Milka",
	"Blackblock",
	"Coco",
	"Doublechocolate",
}

// Flavors returns a copy of the cookie catalog offered to clients.
func Flavors() []string {
	out := make([]string, len(flavors))
	copy(out, flavors)
	return out
}

// IsCatalogFlavor reports whether name is one of the catalog flavors.
func IsCatalogFlavor(name string) bool {
	for _, f := range flavors {
		if f == name {
			return true
		}
	}
	return false
}
