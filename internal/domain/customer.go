package domain

import "strings"

type Customer struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	Phone                  string    `json:"phone"`
	Name                   string    `json:"name"`
	ProfileImage           string    `json:"profileImage,omitempty"`
	PreferredPaymentMethod string    `json:"preferredPaymentMethod,omitempty"` // MTN_MOMO | ORANGE_MONEY | CASH
	EmailVerified          bool      `json:"emailVerified"`
	PhoneVerified          bool      `json:"phoneVerified"`
	Addresses              []Address `json:"addresses"`
}

// NeedsPhoneUpdate reports whether the account lacks a usable phone number.
// Social logins are created with a "google_" placeholder until the customer
// completes their profile.
func (c *Customer) NeedsPhoneUpdate() bool {
	return c.Phone == "" || strings.HasPrefix(c.Phone, "google_")
}

// DefaultAddress returns the address flagged as default, if any.
func (c *Customer) DefaultAddress() *Address {
	for i := range c.Addresses {
		if c.Addresses[i].IsDefault {
			return &c.Addresses[i]
		}
	}
	return nil
}

type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Region    string `json:"region,omitempty"`
	Landmark  string `json:"landmark,omitempty"`
	IsDefault bool   `json:"isDefault"`
}
