package workers

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
)

var (
	welcomeHTML = template.Must(template.New("welcome").Parse(`<html>
<body>
<h1>Welcome to Shop Service!</h1>
<p>Your account has been created successfully.</p>
<p>User ID: {{.UserID}}</p>
</body>
</html>`))

	confirmationHTML = template.Must(template.New("confirmation").Parse(`<html>
<body>
<h1>Order Confirmed</h1>
<p>Your order has been confirmed.</p>
<p>Order ID: {{.OrderID}}</p>
<p>Total: {{.Total}} {{.Currency}}</p>
</body>
</html>`))
)

// WelcomeEmail builds the email sent after registration.
func WelcomeEmail(to string, userID uuid.UUID) (Email, error) {
	html, err := render(welcomeHTML, struct{ UserID string }{userID.String()})
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:      to,
		Subject: "Welcome to Shop Service!",
		Text:    "Welcome! Your account has been created successfully.",
		HTML:    html,
	}, nil
}

// OrderConfirmationEmail builds the email sent after an order is confirmed.
func OrderConfirmationEmail(to string, orderID uuid.UUID, total, currency string) (Email, error) {
	html, err := render(confirmationHTML, struct {
		OrderID  string
		Total    string
		Currency string
	}{orderID.String(), total, currency})
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Order Confirmation - Order #%s", orderID.String()[:8]),
		Text: fmt.Sprintf("Your order has been confirmed. Order ID: %s\nTotal: %s %s",
			orderID, total, currency),
		HTML: html,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return b.String(), nil
}
