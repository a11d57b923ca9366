package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	razorpay "github.com/razorpay/razorpay-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
	"qusar-backend/internal/settings"
)

type updatePaymentSettingsRequest struct {
	RazorpayKeyID     *string  `json:"razorpayKeyId"`
	RazorpayKeySecret *string  `json:"razorpayKeySecret"`
	RazorpayEnabled   *bool    `json:"razorpayEnabled"`
	RazorpayTestMode  *bool    `json:"razorpayTestMode"`
	CODEnabled        *bool    `json:"codEnabled"`
	CODMinAmount      *float64 `json:"codMinAmount"`
	CODMaxAmount      *float64 `json:"codMaxAmount"`
	Currency          *string  `json:"currency"`
	ShippingCharges   *float64 `json:"shippingCharges"`
	FreeShippingAbove *float64 `json:"freeShippingAbove"`
	TaxPercentage     *float64 `json:"taxPercentage"`
}

type createGatewayOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type verifyPaymentRequest struct {
	OrderID           string `json:"orderId" binding:"required"`
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
}

// GetPaymentSettings returns the commercial parameters a storefront needs.
// The key secret never leaves the server, and the key id is only exposed
// when the gateway is enabled.
func GetPaymentSettings(provider *settings.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/payment/settings"
		defer handlePanic(c, route)

		cfg := provider.Get()

		keyID := ""
		if cfg.RazorpayEnabled {
			keyID = cfg.RazorpayKeyID
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"settings": gin.H{
				"razorpayEnabled":   cfg.RazorpayEnabled,
				"razorpayKeyId":     keyID,
				"codEnabled":        cfg.CODEnabled,
				"codMinAmount":      cfg.CODMinAmount,
				"codMaxAmount":      cfg.CODMaxAmount,
				"currency":          cfg.Currency,
				"shippingCharges":   cfg.ShippingCharges,
				"freeShippingAbove": cfg.FreeShippingAbove,
				"taxPercentage":     cfg.TaxPercentage,
			},
		})
	}
}

func UpdatePaymentSettings(db *mongo.Database, provider *settings.Provider, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/payment/settings"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req updatePaymentSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cfg := provider.Get()
		if req.RazorpayKeyID != nil {
			cfg.RazorpayKeyID = *req.RazorpayKeyID
		}
		if req.RazorpayKeySecret != nil && *req.RazorpayKeySecret != "" {
			encrypted, err := encryptSecret(*req.RazorpayKeySecret, jwtSecret)
			if err != nil {
				log.Println("[PAYMENT] [ERROR] secret encryption failed:", err)
				respondError(c, http.StatusInternalServerError, route, "Error updating settings")
				return
			}
			cfg.RazorpayKeySecret = encrypted
		}
		if req.RazorpayEnabled != nil {
			cfg.RazorpayEnabled = *req.RazorpayEnabled
		}
		if req.RazorpayTestMode != nil {
			cfg.RazorpayTestMode = *req.RazorpayTestMode
		}
		if req.CODEnabled != nil {
			cfg.CODEnabled = *req.CODEnabled
		}
		if req.CODMinAmount != nil {
			cfg.CODMinAmount = *req.CODMinAmount
		}
		if req.CODMaxAmount != nil {
			cfg.CODMaxAmount = *req.CODMaxAmount
		}
		if req.Currency != nil && *req.Currency != "" {
			cfg.Currency = *req.Currency
		}
		if req.ShippingCharges != nil {
			cfg.ShippingCharges = *req.ShippingCharges
		}
		if req.FreeShippingAbove != nil {
			cfg.FreeShippingAbove = *req.FreeShippingAbove
		}
		if req.TaxPercentage != nil {
			cfg.TaxPercentage = *req.TaxPercentage
		}
		cfg.UpdatedBy = &user.ID
		cfg.UpdatedAt = time.Now()

		filter := bson.M{}
		if !cfg.ID.IsZero() {
			filter["_id"] = cfg.ID
		}
		res, err := db.Collection("payment_settings").ReplaceOne(ctx, filter, cfg, options.Replace().SetUpsert(true))
		if err != nil {
			log.Println("[PAYMENT] [ERROR] settings save failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error updating settings")
			return
		}
		if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
			cfg.ID = id
		}

		provider.Refresh(cfg)
		log.Println("[PAYMENT] [INFO] payment settings updated by:", user.ID.Hex())

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment settings updated"})
	}
}

// CreateGatewayOrder registers the order with the payment gateway and
// returns the gateway order id the client needs to open checkout.
func CreateGatewayOrder(db *mongo.Database, provider *settings.Provider, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payment/create-order"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req createGatewayOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid order id")
			return
		}

		cfg := provider.Get()
		if !cfg.RazorpayEnabled {
			respondError(c, http.StatusBadRequest, route, "Online payments are not enabled")
			return
		}
		secret := decryptSecret(cfg.RazorpayKeySecret, jwtSecret)
		if cfg.RazorpayKeyID == "" || secret == "" {
			respondError(c, http.StatusServiceUnavailable, route, "Payment gateway is not configured")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "user": user.ID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error creating payment order")
			return
		}

		if !models.OnlinePaymentMethod(order.PaymentMethod) {
			respondError(c, http.StatusBadRequest, route, "Order is not an online payment order")
			return
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			respondError(c, http.StatusBadRequest, route, "Order is already paid")
			return
		}

		client := razorpay.NewClient(cfg.RazorpayKeyID, secret)
		amountPaise := int64(math.Round(order.TotalPrice * 100))
		body, err := client.Order.Create(map[string]interface{}{
			"amount":   amountPaise,
			"currency": cfg.Currency,
			"receipt":  "order_" + order.ID.Hex(),
		}, nil)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] gateway order create failed:", err)
			respondError(c, http.StatusBadGateway, route, "Payment gateway error")
			return
		}

		gatewayOrderID, _ := body["id"].(string)
		if gatewayOrderID == "" {
			respondError(c, http.StatusBadGateway, route, "Payment gateway error")
			return
		}

		_, err = db.Collection("orders").UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": bson.M{
			"paymentDetails.gatewayOrderId": gatewayOrderID,
			"updatedAt":                     time.Now(),
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error creating payment order")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"gatewayOrderId": gatewayOrderID,
			"amount":         amountPaise,
			"currency":       cfg.Currency,
			"keyId":          cfg.RazorpayKeyID,
		})
	}
}

// VerifyPayment checks the gateway callback signature and settles the order.
// The cart is only consumed here for online orders, so an abandoned payment
// leaves the cart intact.
func VerifyPayment(db *mongo.Database, provider *settings.Provider, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payment/verify"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid order id")
			return
		}

		cfg := provider.Get()
		secret := decryptSecret(cfg.RazorpayKeySecret, jwtSecret)
		if secret == "" {
			respondError(c, http.StatusServiceUnavailable, route, "Payment gateway is not configured")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "user": user.ID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error verifying payment")
			return
		}

		if order.PaymentStatus == models.PaymentStatusPaid {
			respondError(c, http.StatusBadRequest, route, "Order is already paid")
			return
		}

		if !models.OnlinePaymentMethod(order.PaymentMethod) {
			respondError(c, http.StatusBadRequest, route, "Order is not an online payment")
			return
		}

		if !matchesGatewayOrder(&order, req.RazorpayOrderID) {
			respondError(c, http.StatusBadRequest, route, "Payment does not belong to this order")
			return
		}

		if !verifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, secret) {
			log.Println("[PAYMENT] [WARN] signature verification failed for order:", order.ID.Hex())
			_, uerr := db.Collection("orders").UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": bson.M{
				"paymentStatus": models.PaymentStatusFailed,
				"updatedAt":     time.Now(),
			}})
			if uerr != nil {
				log.Println("[PAYMENT] [ERROR] failed status update failed:", uerr)
			}
			respondError(c, http.StatusBadRequest, route, "Payment verification failed")
			return
		}

		now := time.Now()
		_, err = db.Collection("orders").UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": bson.M{
			"paymentStatus":                  models.PaymentStatusPaid,
			"paymentDetails.method":          order.PaymentMethod,
			"paymentDetails.gatewayOrderId":  req.RazorpayOrderID,
			"paymentDetails.gatewayPaymentId": req.RazorpayPaymentID,
			"paymentDetails.gatewaySignature": req.RazorpaySignature,
			"paymentDetails.paidAt":          now,
			"updatedAt":                      now,
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error verifying payment")
			return
		}

		if _, err := db.Collection("carts").DeleteOne(ctx, bson.M{"user": user.ID}); err != nil {
			log.Println("[PAYMENT] [WARN] cart cleanup failed:", err)
		}

		log.Println("[PAYMENT] [INFO] payment verified for order:", order.OrderNumber)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified"})
	}
}

// matchesGatewayOrder reports whether a callback's gateway order id refers to
// the gateway order created for this order. Orders that never went through
// CreateGatewayOrder have no stored id and never match.
func matchesGatewayOrder(o *models.Order, gatewayOrderID string) bool {
	return o.PaymentDetails != nil &&
		o.PaymentDetails.GatewayOrderID != "" &&
		o.PaymentDetails.GatewayOrderID == gatewayOrderID
}
