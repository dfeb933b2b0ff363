package models

import "time"

// Client is a tenant of the helpdesk.
type Client struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	ContactEmail string    `json:"contact_email"`
	Phone        string    `json:"phone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type ClientInput struct {
	Name         string `json:"name" form:"name" binding:"required,max=120"`
	Code         string `json:"code" form:"code" binding:"required,alphanum,max=16"`
	ContactEmail string `json:"contact_email" form:"contact_email" binding:"omitempty,email"`
	Phone        string `json:"phone" form:"phone" binding:"omitempty,max=32"`
	IsActive     bool   `json:"is_active" form:"is_active"`
}

// Site is a physical location of a client.
type Site struct {
	ID         uint   `json:"id"`
	ClientID   uint   `json:"client_id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type SiteInput struct {
	Name       string `json:"name" form:"name" binding:"required,max=120"`
	Address    string `json:"address" form:"address" binding:"required"`
	City       string `json:"city" form:"city" binding:"required"`
	PostalCode string `json:"postal_code" form:"postal_code" binding:"omitempty,max=16"`
	Country    string `json:"country" form:"country" binding:"omitempty,len=2"`
}
