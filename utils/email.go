package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

// statusMessages mirrors the wording customers see on the storefront.
var statusMessages = map[string]string{
	"Pending":    "Your order has been received and is awaiting processing.",
	"Processing": "Your order is currently being processed. We're preparing your items for shipment.",
	"Shipped":    "Great news! Your order has been shipped and is on its way to you.",
	"Delivered":  "Your order has been successfully delivered. Thank you for shopping with us!",
	"Cancelled":  "Your order has been cancelled. Please contact us if you have any questions.",
}

var statusNextSteps = map[string]string{
	"Pending":    "We will notify you when your order starts processing. Estimated processing time: 24-48 hours.",
	"Processing": "Your items are being prepared. You will receive shipping details soon.",
	"Shipped":    "Estimated delivery: within 3-7 business days. Please ensure someone is available to receive the package.",
	"Delivered":  "Please inspect your items upon delivery and contact us within 7 days for any issues.",
	"Cancelled":  "Any payments will be refunded within 5-7 business days. Contact us for more information.",
}

// StatusMessage returns the customer-facing explanation for an order status.
func StatusMessage(status string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Your order status has been updated."
}

func firstName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return strings.Split(name, " ")[0]
}

func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome to ShopNow!"
		body := fmt.Sprintf(`<h2>Welcome to ShopNow, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Browse our full catalog</li>
<li>Save products to your wishlist</li>
<li>Track your orders from your account</li>
</ul>
<p>Happy shopping!</p>
<p>The ShopNow Team</p>`, firstName(name))
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

func SendOrderConfirmation(email, name, orderNumber string, total float64) {
	go func() {
		subject := fmt.Sprintf("Order Confirmed - %s", orderNumber)
		body := fmt.Sprintf(`<h2>Order Confirmed!</h2>
<p>Hi %s,</p>
<p>Your order <strong>%s</strong> has been placed successfully.</p>
<p>Order total: <strong>EGP %.2f</strong></p>
<p>We'll notify you when your order status changes.</p>
<p>The ShopNow Team</p>`, firstName(name), orderNumber, total)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send order confirmation to %s: %v", email, err)
		}
	}()
}

func SendOrderStatusUpdate(email, name, orderNumber, status string) {
	go func() {
		subject := fmt.Sprintf("Order %s - Status Update", orderNumber)
		body := fmt.Sprintf(`<h2>Order Status Update</h2>
<p>Hi %s,</p>
<p>Your order <strong>%s</strong> status has been updated to: <strong>%s</strong></p>
<p>%s</p>
<p>%s</p>
<p>The ShopNow Team</p>`, firstName(name), orderNumber, status, StatusMessage(status), statusNextSteps[status])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send status update email to %s: %v", email, err)
		}
	}()
}

func SendPasswordResetEmail(email, name, resetToken, frontendURL string) {
	go func() {
		resetLink := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, resetToken)
		subject := "Reset Your Password - ShopNow"
		body := fmt.Sprintf(`<h2>Password Reset Request</h2>
<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to set a new password:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link will expire in 1 hour.</p>
<p>If you didn't request this, you can safely ignore this email.</p>
<p>The ShopNow Team</p>`, firstName(name), resetLink)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send password reset email to %s: %v", email, err)
		}
	}()
}

// SendContactMessage forwards a storefront contact-form submission to the
// store inbox (CONTACT_EMAIL, falling back to SMTP_FROM).
func SendContactMessage(fromName, fromEmail, subject, message string) {
	go func() {
		inbox := os.Getenv("CONTACT_EMAIL")
		if inbox == "" {
			inbox = os.Getenv("SMTP_FROM")
		}
		body := fmt.Sprintf(`<h2>New contact message</h2>
<p><strong>From:</strong> %s (%s)</p>
<p><strong>Subject:</strong> %s</p>
<p>%s</p>`, fromName, fromEmail, subject, message)
		if err := SendEmail(inbox, "Contact form: "+subject, body); err != nil {
			log.Printf("Failed to forward contact message from %s: %v", fromEmail, err)
		}
	}()
}
