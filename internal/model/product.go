package model

import "time"

type Product struct {
	ID             int64     `json:"product_id"`
	Name           string    `json:"product_name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	CategoryID     int64     `json:"category_id"`
	CategoryName   string    `json:"category_name"`
	StockAvailable *int      `json:"stock_available"`
	FilePath       string    `json:"file_path"`
	PreviewPath    *string   `json:"preview_path"`
	CoverImagePath string    `json:"cover_image_path"`
	AverageRating  float64   `json:"average_rating"`
	TotalRatings   int       `json:"total_ratings"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductPage is one page of a product listing together with its pagination metadata.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalItems int64     `json:"total_items"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
