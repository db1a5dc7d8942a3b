package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	razorpayutils "github.com/razorpay/razorpay-go/utils"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/htmlutil"
	"github.com/ibunity/backend/internal/models"
)

// bundleUnlimitedCents is the fixed price of the all-access bundle: $15.00.
const bundleUnlimitedCents = 1500

type PaymentHandler struct {
	db *gorm.DB
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

type paymentItem struct {
	ID string `json:"id"`
}

type paymentItems struct {
	Items []paymentItem `json:"items"`
}

// priceItems resolves the request's item ids against the content library.
// The unlimited bundle short-circuits to its fixed price.
func (h *PaymentHandler) priceItems(input paymentItems) (amountCents int, bundle bool, err error) {
	if len(input.Items) == 0 {
		return 0, false, fmt.Errorf("no items in request")
	}
	if input.Items[0].ID == models.BundleUnlimited {
		return bundleUnlimitedCents, true, nil
	}
	for _, reqItem := range input.Items {
		id, err := strconv.Atoi(reqItem.ID)
		if err != nil {
			return 0, false, fmt.Errorf("item %s not found", reqItem.ID)
		}
		var item models.ContentItem
		if err := h.db.First(&item, id).Error; err != nil {
			return 0, false, fmt.Errorf("item %s not found", reqItem.ID)
		}
		amountCents += item.PriceCents
	}
	return amountCents, false, nil
}

// CreatePaymentIntent creates a Stripe PaymentIntent for the requested items.
// Prices are always looked up server-side, never trusted from the client.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe is not configured"})
		return
	}
	stripe.Key = key

	var input paymentItems
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amountCents, _, err := h.priceItems(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amountCents)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": pi.ClientSecret})
}

// CreateRazorpayOrder creates a Razorpay order for the requested items, or for
// the hardcoded unlimited bundle at its fixed price.
func (h *PaymentHandler) CreateRazorpayOrder(c *gin.Context) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Razorpay is not configured"})
		return
	}

	var input paymentItems
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amountCents, _, err := h.priceItems(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	client := razorpay.NewClient(keyID, keySecret)
	data := map[string]interface{}{
		"amount":   amountCents, // smallest currency unit
		"currency": "USD",
		"receipt":  uuid.New().String(),
	}
	order, err := client.Order.Create(data, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       order["id"],
		"currency": "USD",
		"amount":   amountCents,
		"key_id":   keyID,
	})
}

// ConfirmPurchase verifies a completed provider payment and records the
// purchase. The provider must confirm not just that a payment happened but
// that it charged exactly the claimed item's price, and a provider reference
// is consumed once: without both checks a cheap or foreign payment could be
// replayed to unlock arbitrary items.
func (h *PaymentHandler) ConfirmPurchase(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Provider  string `json:"provider" binding:"required,oneof=stripe razorpay"`
		ItemID    string `json:"item_id" binding:"required"`
		PaymentID string `json:"payment_id"`
		OrderID   string `json:"order_id"`
		Signature string `json:"signature"`
		IntentID  string `json:"intent_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase := models.Purchase{
		UserID:   userID,
		Provider: input.Provider,
		Receipt:  uuid.New().String(),
		Currency: "usd",
	}

	if input.ItemID == models.BundleUnlimited {
		purchase.Bundle = models.BundleUnlimited
		purchase.AmountCents = bundleUnlimitedCents
	} else {
		id, convErr := strconv.Atoi(input.ItemID)
		if convErr != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		var item models.ContentItem
		if err := h.db.First(&item, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		purchase.ContentItemID = &item.ID
		purchase.AmountCents = item.PriceCents
	}

	// A user buys an item (or the bundle) at most once.
	owned := h.db.Model(&models.Purchase{}).Where("user_id = ?", userID)
	if purchase.ContentItemID != nil {
		owned = owned.Where("content_item_id = ?", *purchase.ContentItemID)
	} else {
		owned = owned.Where("bundle = ?", models.BundleUnlimited)
	}
	var count int64
	owned.Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Already purchased"})
		return
	}

	providerRef := input.IntentID
	if input.Provider == "razorpay" {
		providerRef = input.PaymentID
	}
	h.db.Model(&models.Purchase{}).
		Where("provider = ? AND provider_ref = ?", input.Provider, providerRef).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment reference already used"})
		return
	}

	switch input.Provider {
	case "stripe":
		key := os.Getenv("STRIPE_SECRET_KEY")
		if key == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe is not configured"})
			return
		}
		stripe.Key = key
		pi, err := paymentintent.Get(input.IntentID, nil)
		if err != nil || pi.Status != stripe.PaymentIntentStatusSucceeded {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment not completed"})
			return
		}
		if pi.Amount != int64(purchase.AmountCents) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment amount mismatch"})
			return
		}
		purchase.ProviderRef = pi.ID

	case "razorpay":
		keyID := os.Getenv("RAZORPAY_KEY_ID")
		keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
		if keyID == "" || keySecret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Razorpay is not configured"})
			return
		}
		params := map[string]interface{}{
			"razorpay_order_id":   input.OrderID,
			"razorpay_payment_id": input.PaymentID,
		}
		if !razorpayutils.VerifyPaymentSignature(params, input.Signature, keySecret) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
			return
		}
		// The signature only proves the order/payment pair is authentic;
		// the order itself carries the amount that was actually paid.
		client := razorpay.NewClient(keyID, keySecret)
		order, err := client.Order.Fetch(input.OrderID, nil, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment not completed"})
			return
		}
		amount, _ := order["amount"].(float64)
		if int(amount) != purchase.AmountCents {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment amount mismatch"})
			return
		}
		purchase.ProviderRef = input.PaymentID
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		body := fmt.Sprintf("Your purchase is ready in %s",
			htmlutil.Anchor("/library/purchases", "your library"))
		notification := models.Notification{
			NotifyToID: userID,
			NotifyByID: userID,
			Type:       models.NotificationTypePurchase,
			Body:       body,
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		// The unique indexes backstop the pre-checks under concurrency.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already purchased"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record purchase"})
		return
	}

	c.JSON(http.StatusCreated, purchase)
}
