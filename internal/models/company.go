package models

// Company is a raw record from the companies dataset.
type Company struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Website      string         `json:"website,omitempty"`
	LogoURL      string         `json:"logoUrl,omitempty"`
	ImageURL     string         `json:"imageUrl,omitempty"`
	Headquarters []Headquarters `json:"headquarters,omitempty"`
}

// Headquarters is one office location of a company. Lat and Lon are pointers
// because many records carry a city but no coordinates.
type Headquarters struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// PrimaryHeadquarters returns the first headquarters entry, which is the one
// placed on the map.
func (c *Company) PrimaryHeadquarters() (*Headquarters, bool) {
	if len(c.Headquarters) == 0 {
		return nil, false
	}
	return &c.Headquarters[0], true
}

// Coordinates returns the headquarters position; missing components are zero.
func (h Headquarters) Coordinates() Coordinates {
	var c Coordinates
	if h.Lat != nil {
		c.Lat = *h.Lat
	}
	if h.Lon != nil {
		c.Lon = *h.Lon
	}
	return c
}

// SetCoordinates stores c on the headquarters.
func (h *Headquarters) SetCoordinates(c Coordinates) {
	lat, lon := c.Lat, c.Lon
	h.Lat, h.Lon = &lat, &lon
}

// CompanyInfo is the descriptive payload carried by a map point.
type CompanyInfo struct {
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}
