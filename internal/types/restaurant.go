package types

// Restaurant is one entry scraped from a restaurant list page.
type Restaurant struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Website     string `json:"website,omitempty"`
	Image       string `json:"image,omitempty"`
}

// WineOffering is where a restaurant's wine list was found, if anywhere.
type WineOffering struct {
	Name        string `json:"name"`
	Website     string `json:"website"`
	WineMenuURL string `json:"wine_menu_url"`
	Status      string `json:"status"`
}
