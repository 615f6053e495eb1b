package property

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Listing is a catalogued property offered for sale.
type Listing struct {
	ID          string `json:"id"`
	Title       string `json:"judul_properti"`
	Village     string `json:"kelurahan"`
	SubDistrict string `json:"kecamatan"`
	Address     string `json:"alamat"`
	Description string `json:"deskripsi"`

	Attributes

	Price       float64   `json:"harga"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	SellerName  string    `json:"nama_penjual"`
	SellerPhone string    `json:"nomor_penjual"`
	Images      []string  `json:"images,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Available reports whether the listing can be shown to buyers.
func (l Listing) Available() bool {
	return l.Status == StatusAvailable
}

// ContactLink returns the seller's WhatsApp link, empty if no usable phone.
func (l Listing) ContactLink() string {
	return WhatsAppLink(l.SellerPhone, l.SellerName, l.Title)
}
