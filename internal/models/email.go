package models

// EmailConfig holds outbound SMTP and inbound mailbox settings. The password
// is write-only and never returned by the backend.
type EmailConfig struct {
	SMTPHost       string `json:"smtp_host"`
	SMTPPort       int    `json:"smtp_port"`
	Username       string `json:"username"`
	FromAddress    string `json:"from_address"`
	FromName       string `json:"from_name"`
	UseTLS         bool   `json:"use_tls"`
	InboundEnabled bool   `json:"inbound_enabled"`
	InboundHost    string `json:"inbound_host"`
	InboundPort    int    `json:"inbound_port"`
}

type EmailConfigInput struct {
	SMTPHost       string `json:"smtp_host" form:"smtp_host" binding:"required,hostname_rfc1123"`
	SMTPPort       int    `json:"smtp_port" form:"smtp_port" binding:"required,min=1,max=65535"`
	Username       string `json:"username" form:"username"`
	Password       string `json:"password,omitempty" form:"password"`
	FromAddress    string `json:"from_address" form:"from_address" binding:"required,email"`
	FromName       string `json:"from_name" form:"from_name" binding:"max=80"`
	UseTLS         bool   `json:"use_tls" form:"use_tls"`
	InboundEnabled bool   `json:"inbound_enabled" form:"inbound_enabled"`
	InboundHost    string `json:"inbound_host" form:"inbound_host" binding:"required_if=InboundEnabled true"`
	InboundPort    int    `json:"inbound_port" form:"inbound_port" binding:"omitempty,min=1,max=65535"`
}

type EmailTestInput struct {
	Recipient string `json:"recipient" form:"recipient" binding:"required,email"`
}
