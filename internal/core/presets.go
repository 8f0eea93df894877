package core

// Preset is a well-known subscription offered as a one-tap template when
// adding a subscription. Prices are the provider's standard individual plan
// and are editable by the user before saving.
type Preset struct {
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	BillingCycle BillingCycle `json:"billing_cycle"`
	Category     string       `json:"category"`
}

// Presets lists the built-in subscription templates.
func Presets() []Preset {
	return []Preset{
		{Name: "Netflix", Price: 15.49, Currency: "USD", BillingCycle: Monthly, Category: "Entertainment"},
		{Name: "Spotify", Price: 11.99, Currency: "USD", BillingCycle: Monthly, Category: "Music"},
		{Name: "YouTube Premium", Price: 13.99, Currency: "USD", BillingCycle: Monthly, Category: "Entertainment"},
		{Name: "Disney+", Price: 9.99, Currency: "USD", BillingCycle: Monthly, Category: "Entertainment"},
		{Name: "Amazon Prime", Price: 139, Currency: "USD", BillingCycle: Yearly, Category: "Shopping"},
		{Name: "iCloud+", Price: 2.99, Currency: "USD", BillingCycle: Monthly, Category: "Cloud"},
		{Name: "Google One", Price: 19.99, Currency: "USD", BillingCycle: Yearly, Category: "Cloud"},
		{Name: "PlayStation Plus", Price: 79.99, Currency: "USD", BillingCycle: Yearly, Category: "Gaming"},
		{Name: "Xbox Game Pass", Price: 16.99, Currency: "USD", BillingCycle: Monthly, Category: "Gaming"},
		{Name: "ChatGPT Plus", Price: 20, Currency: "USD", BillingCycle: Monthly, Category: "Productivity"},
	}
}
