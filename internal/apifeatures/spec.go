package apifeatures

// FieldType tells the filter stage how to parse a query string value.
type FieldType int

const (
	String FieldType = iota
	Number
	Integer
	Bool
	ObjectID
	Time
)

// Spec is the allow-list a resource exposes to query strings.
type Spec struct {
	// Filters maps filterable document fields to their value type.
	Filters map[string]FieldType
	// SearchFields are matched case-insensitively by ?search=. Empty
	// disables search.
	SearchFields []string
	Sortable     []string
	Selectable   []string
	DefaultSort  string
	DefaultLimit int64
}

var ProductSpec = Spec{
	Filters: map[string]FieldType{
		"name":                String,
		"price":               Number,
		"discount":            Number,
		"isActive":            Bool,
		"category":            ObjectID,
		"createdAt":           Time,
		"variants.sku":        String,
		"variants.stockCount": Integer,
	},
	SearchFields: []string{"name", "description"},
	Sortable:     []string{"name", "price", "discount", "isActive", "createdAt"},
	Selectable:   []string{"name", "description", "price", "category", "variants", "images", "isActive", "discount", "createdAt"},
	DefaultSort:  "-createdAt",
	DefaultLimit: 100,
}

var CategorySpec = Spec{
	Filters: map[string]FieldType{
		"name":      String,
		"isActive":  Bool,
		"createdAt": Time,
	},
	Sortable:     []string{"name", "isActive", "createdAt"},
	Selectable:   []string{"name", "description", "isActive", "createdAt"},
	DefaultSort:  "-createdAt",
	DefaultLimit: 100,
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
