// Package roulette turns an upstream RawTable into the restaurant feed served
// to the roulette client.
package roulette

// Restaurant is one emitted row. All fields are trimmed; name, cuisine and
// zone are never empty.
type Restaurant struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Cuisine     string `json:"cuisine" yaml:"cuisine"`
	Zone        string `json:"zone" yaml:"zone"`
	DeliveryURL string `json:"deliveryUrl" yaml:"deliveryUrl"`
	MapsURL     string `json:"mapsUrl" yaml:"mapsUrl"`
	Image       string `json:"image" yaml:"image"`
}

// Envelope is the success body for every backend.
type Envelope struct {
	Source      string       `json:"source" yaml:"source"`
	Count       int          `json:"count" yaml:"count"`
	Restaurants []Restaurant `json:"restaurants" yaml:"restaurants"`
}
