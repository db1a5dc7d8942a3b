package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/testdb"
)

func TestPaymentEndpoints(t *testing.T) {
	r, db := newTestEnv(t)

	buyer := createUser(t, db, "buyer")
	token := tokenFor(t, buyer)

	item := models.ContentItem{Title: "IA exemplar pack", PriceCents: 500}
	require.NoError(t, db.Create(&item).Error)

	cart := map[string]any{"items": []map[string]any{{"id": "1"}}}

	t.Run("requires auth", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/create-payment-intent", "", cart)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("stripe unconfigured is a server error", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "")
		w := doJSON(t, r, http.MethodPost, "/api/create-payment-intent", token, cart)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("razorpay unconfigured is a server error", func(t *testing.T) {
		t.Setenv("RAZORPAY_KEY_ID", "")
		t.Setenv("RAZORPAY_KEY_SECRET", "")
		w := doJSON(t, r, http.MethodPost, "/api/create-razorpay-order", token, cart)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("unknown item is a server error", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")
		w := doJSON(t, r, http.MethodPost, "/api/create-payment-intent", token,
			map[string]any{"items": []map[string]any{{"id": "99999"}}})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decode(t, w)["error"], "not found")
	})

	t.Run("empty cart is a server error", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")
		w := doJSON(t, r, http.MethodPost, "/api/create-payment-intent", token,
			map[string]any{"items": []map[string]any{}})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestConfirmPurchase(t *testing.T) {
	r, db := newTestEnv(t)

	buyer := createUser(t, db, "buyer")
	other := createUser(t, db, "other")
	item := models.ContentItem{Title: "EE research guide", PriceCents: 900}
	require.NoError(t, db.Create(&item).Error)
	second := models.ContentItem{Title: "TOK exhibition notes", PriceCents: 400}
	require.NoError(t, db.Create(&second).Error)

	confirmPath := "/api/purchases/confirm"
	itemID := strconv.Itoa(item.ID)

	t.Run("requires auth", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, confirmPath, "", map[string]string{
			"provider": "stripe", "item_id": itemID, "intent_id": "pi_1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown item", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, confirmPath, tokenFor(t, buyer), map[string]string{
			"provider": "stripe", "item_id": "99999", "intent_id": "pi_1"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("repeat purchase is a conflict", func(t *testing.T) {
		existing := models.Purchase{
			UserID:        buyer.ID,
			ContentItemID: &item.ID,
			Provider:      "stripe",
			ProviderRef:   "pi_consumed",
			AmountCents:   item.PriceCents,
		}
		require.NoError(t, db.Create(&existing).Error)

		w := doJSON(t, r, http.MethodPost, confirmPath, tokenFor(t, buyer), map[string]string{
			"provider": "stripe", "item_id": itemID, "intent_id": "pi_fresh"})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decode(t, w)["error"], "Already purchased")
	})

	t.Run("payment reference is consumed once", func(t *testing.T) {
		// A reference that already bought something cannot buy anything else,
		// for anyone.
		w := doJSON(t, r, http.MethodPost, confirmPath, tokenFor(t, other), map[string]string{
			"provider": "stripe", "item_id": strconv.Itoa(second.ID), "intent_id": "pi_consumed"})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decode(t, w)["error"], "already used")
	})

	t.Run("razorpay signature is verified", func(t *testing.T) {
		t.Setenv("RAZORPAY_KEY_ID", "rzp_test_dummy")
		t.Setenv("RAZORPAY_KEY_SECRET", "secret_dummy")

		w := doJSON(t, r, http.MethodPost, confirmPath, tokenFor(t, other), map[string]string{
			"provider":   "razorpay",
			"item_id":    models.BundleUnlimited,
			"order_id":   "order_1",
			"payment_id": "pay_1",
			"signature":  "deadbeef",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["error"], "Invalid payment signature")
	})

	t.Run("stripe unconfigured", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "")
		w := doJSON(t, r, http.MethodPost, confirmPath, tokenFor(t, other), map[string]string{
			"provider": "stripe", "item_id": strconv.Itoa(second.ID), "intent_id": "pi_other"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestPriceItems(t *testing.T) {
	db := testdb.New(t)
	h := NewPaymentHandler(db)

	first := models.ContentItem{Title: "Notes: HL Calculus", PriceCents: 300}
	second := models.ContentItem{Title: "Notes: SL Statistics", PriceCents: 450}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	input := paymentItems{Items: []paymentItem{
		{ID: strconv.Itoa(first.ID)},
		{ID: strconv.Itoa(second.ID)},
	}}
	amount, bundle, err := h.priceItems(input)
	require.NoError(t, err)
	assert.False(t, bundle)
	assert.Equal(t, 750, amount)

	bundleInput := paymentItems{Items: []paymentItem{{ID: models.BundleUnlimited}}}
	amount, bundle, err = h.priceItems(bundleInput)
	require.NoError(t, err)
	assert.True(t, bundle)
	assert.Equal(t, bundleUnlimitedCents, amount)

	_, _, err = h.priceItems(paymentItems{})
	assert.Error(t, err)

	_, _, err = h.priceItems(paymentItems{Items: []paymentItem{{ID: "99999"}}})
	assert.Error(t, err)
}
