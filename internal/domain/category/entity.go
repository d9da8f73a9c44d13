// internal/domain/category/entity.go
package category

// Category is a plain record used to group marketplace listings.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Slug string `json:"slug" db:"slug"`
	Name string `json:"name" db:"name"`
}
