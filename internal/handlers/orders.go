package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
	"qusar-backend/internal/notify"
	"qusar-backend/internal/settings"
)

type createOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type rejectOrderRequest struct {
	Reason string `json:"reason"`
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID.Hex(), e.Available, e.Requested)
}

type productUnavailableError struct {
	ProductID primitive.ObjectID
}

func (e productUnavailableError) Error() string {
	return "product unavailable: " + e.ProductID.Hex()
}

// newOrderNumber builds a human-readable order number. Millisecond prefix
// keeps numbers roughly sortable; the random suffix breaks same-millisecond
// ties.
func newOrderNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1000)
	}
	return fmt.Sprintf("ORD%d%03d", time.Now().UnixMilli(), n.Int64())
}

func CreateOrder(db *mongo.Database, provider *settings.Provider, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if !models.ValidPaymentMethod(req.PaymentMethod) {
			respondError(c, http.StatusBadRequest, route, "Invalid payment method")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments || (err == nil && len(cart.Items) == 0) {
			respondError(c, http.StatusBadRequest, route, "Cart is empty")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error creating order")
			return
		}

		cfg := provider.Get()
		totals := computeOrderTotals(cart.Items, cfg)

		if req.PaymentMethod == models.PaymentCOD && !codAllowed(totals.Total, cfg) {
			respondError(c, http.StatusBadRequest, route, "Cash on delivery is not available for this order amount")
			return
		}

		now := time.Now()
		order := models.Order{
			OrderNumber:          newOrderNumber(),
			User:                 user.ID,
			ShippingAddress:      req.ShippingAddress,
			PaymentMethod:        req.PaymentMethod,
			PaymentStatus:        models.PaymentStatusPending,
			ItemsPrice:           totals.Subtotal,
			ShippingPrice:        totals.Shipping,
			TaxPrice:             totals.Tax,
			TotalPrice:           totals.Total,
			OrderStatus:          models.OrderPending,
			ExpectedDeliveryDate: now.Add(5 * 24 * time.Hour),
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error creating order")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			items := make([]models.OrderItem, 0, len(cart.Items))

			for i, line := range cart.Items {
				var product models.Product
				err := db.Collection("products").FindOne(sessCtx, bson.M{"_id": line.Product}).Decode(&product)
				if err == mongo.ErrNoDocuments {
					return nil, productUnavailableError{ProductID: line.Product}
				}
				if err != nil {
					return nil, err
				}
				if !product.IsActive {
					return nil, productUnavailableError{ProductID: line.Product}
				}
				if product.Stock < line.Quantity {
					return nil, outOfStockError{
						ProductID: line.Product,
						Available: product.Stock,
						Requested: line.Quantity,
					}
				}

				// The whole order is attributed to the owner of the first
				// cart item. Mixed-seller carts keep that attribution.
				if i == 0 {
					order.Seller = product.Seller
				}

				image := ""
				if len(product.Images) > 0 {
					image = product.Images[0]
				}
				items = append(items, models.OrderItem{
					Product:  product.ID,
					Name:     product.Name,
					Image:    image,
					Quantity: line.Quantity,
					Price:    line.Price,
				})

				res, err := db.Collection("products").UpdateOne(sessCtx,
					bson.M{"_id": line.Product, "stock": bson.M{"$gte": line.Quantity}},
					bson.M{"$inc": bson.M{"stock": -line.Quantity}},
				)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: line.Product,
						Available: product.Stock,
						Requested: line.Quantity,
					}
				}
			}

			order.Items = items

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}

			// COD orders settle at delivery, so the cart is consumed now.
			// Online orders keep the cart until payment verification.
			if order.PaymentMethod == models.PaymentCOD {
				if _, err := db.Collection("carts").DeleteOne(sessCtx, bson.M{"user": user.ID}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success":   false,
					"message":   "Insufficient stock",
					"productId": stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var unavailErr productUnavailableError
			if errors.As(err, &unavailErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success":   false,
					"message":   "Product no longer available",
					"productId": unavailErr.ProductID.Hex(),
				})
				return
			}
			log.Println("[ORDER] [ERROR] order transaction failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error creating order")
			return
		}

		log.Println("[ORDER] [INFO] order created:", order.OrderNumber, "user:", user.ID.Hex())

		dispatcher.Dispatch(user.ID, models.NotificationOrderPlaced,
			"Order placed", "Your order "+order.OrderNumber+" has been placed.", &order.ID)
		if order.Seller != nil {
			dispatcher.Dispatch(*order.Seller, models.NotificationOrderPlaced,
				"New order received", "You have a new order "+order.OrderNumber+".", &order.ID)
		} else {
			notifyPlatformAdmin(ctx, db, dispatcher, &order)
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Order placed successfully",
			"order":   order,
		})
	}
}

// platformAdminFilter selects users who can act on orders that have no seller
// attached.
func platformAdminFilter() bson.M {
	return bson.M{"role": bson.M{"$in": []models.Role{models.RoleAdmin, models.RoleSuperAdmin}}}
}

// notifyPlatformAdmin routes the new-order notification to an admin when the
// order could not be attributed to a seller.
func notifyPlatformAdmin(ctx context.Context, db *mongo.Database, dispatcher *notify.Dispatcher, order *models.Order) {
	var admin models.User
	if err := db.Collection("users").FindOne(ctx, platformAdminFilter()).Decode(&admin); err != nil {
		log.Println("[ORDER] [WARN] no admin found for order notification:", order.OrderNumber)
		return
	}
	dispatcher.Dispatch(admin.ID, models.NotificationOrderPlaced,
		"New order received", "You have a new order "+order.OrderNumber+".", &order.ID)
}

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		page, limit, err := parsePaginationParams(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"user": user.ID}
		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"orders":  orders,
			"page":    page,
			"pages":   (total + int64(limit) - 1) / int64(limit),
			"total":   total,
		})
	}
}

func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching order")
			return
		}

		if order.User != user.ID && !user.Role.AtLeast(models.RoleAdmin) {
			respondError(c, http.StatusForbidden, route, "Not authorized to view this order")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
	}
}

func CancelOrder(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/cancel"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid order id")
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
			respondError(c, http.StatusInternalServerError, route, "Error cancelling order")
			return
		}

		if !canCancel(order.OrderStatus) {
			respondError(c, http.StatusBadRequest, route, "Order can no longer be cancelled")
			return
		}

		if err := closeOrderAndRestock(ctx, db, &order, models.OrderCancelled, ""); err != nil {
			log.Println("[ORDER] [ERROR] cancel failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error cancelling order")
			return
		}

		if order.Seller != nil {
			dispatcher.Dispatch(*order.Seller, models.NotificationOrderCancelled,
				"Order cancelled", "Order "+order.OrderNumber+" was cancelled by the customer.", &order.ID)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled"})
	}
}

func SellerConfirmOrder(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/seller/orders/:id/confirm"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "seller": user.ID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error confirming order")
			return
		}

		if order.SellerConfirmed {
			respondError(c, http.StatusBadRequest, route, "Order already confirmed")
			return
		}
		if order.OrderStatus != models.OrderPending {
			respondError(c, http.StatusBadRequest, route, "Order can no longer be confirmed")
			return
		}

		now := time.Now()
		_, err = db.Collection("orders").UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": bson.M{
			"sellerConfirmed":   true,
			"sellerConfirmedAt": now,
			"orderStatus":       models.OrderProcessing,
			"updatedAt":         now,
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error confirming order")
			return
		}

		dispatcher.Dispatch(order.User, models.NotificationOrderConfirmed,
			"Order confirmed", "Your order "+order.OrderNumber+" has been confirmed by the seller.", &order.ID)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order confirmed"})
	}
}

func SellerRejectOrder(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/seller/orders/:id/reject"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid order id")
			return
		}

		var req rejectOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "seller": user.ID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error rejecting order")
			return
		}

		if !canSellerReject(&order) {
			respondError(c, http.StatusBadRequest, route, "Order can no longer be rejected")
			return
		}

		if err := closeOrderAndRestock(ctx, db, &order, models.OrderRejected, req.Reason); err != nil {
			log.Println("[ORDER] [ERROR] reject failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error rejecting order")
			return
		}

		dispatcher.Dispatch(order.User, models.NotificationOrderRejected,
			"Order rejected", rejectionNotice(order.OrderNumber, req.Reason), &order.ID)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order rejected"})
	}
}

// rejectionNotice builds the buyer-facing message for a seller rejection. The
// seller's reason, when given, is carried through word for word.
func rejectionNotice(orderNumber, reason string) string {
	msg := "Your order " + orderNumber + " was rejected by the seller."
	if reason != "" {
		msg += " Reason: " + reason
	}
	return msg
}

func SellerOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/seller/orders"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		page, limit, err := parsePaginationParams(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"seller": user.ID}
		if status := c.Query("status"); status != "" {
			if !models.ValidOrderStatus(status) {
				respondError(c, http.StatusBadRequest, route, "Invalid order status")
				return
			}
			filter["orderStatus"] = status
		}

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"orders":  orders,
			"page":    page,
			"pages":   (total + int64(limit) - 1) / int64(limit),
			"total":   total,
		})
	}
}

func AdminAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			if !models.ValidOrderStatus(status) {
				respondError(c, http.StatusBadRequest, route, "Invalid order status")
				return
			}
			filter["orderStatus"] = status
		}

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"orders":  orders,
			"page":    page,
			"pages":   (total + int64(limit) - 1) / int64(limit),
			"total":   total,
		})
	}
}

func AdminUpdateOrderStatus(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid order id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if !canAdminSetStatus(req.Status) {
			respondError(c, http.StatusBadRequest, route, "Invalid order status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating order")
			return
		}

		now := time.Now()
		set := bson.M{"orderStatus": req.Status, "updatedAt": now}
		if req.Status == models.OrderDelivered {
			// Delivery implies settlement for COD, and online orders are
			// already paid by this point.
			set["deliveredAt"] = now
			set["paymentStatus"] = models.PaymentStatusPaid
		}

		_, err = db.Collection("orders").UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": set})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating order")
			return
		}

		dispatcher.Dispatch(order.User, models.NotificationOrderStatus,
			"Order update", "Your order "+order.OrderNumber+" is now "+req.Status+".", &order.ID)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated"})
	}
}

// closeOrderAndRestock marks the order terminal and returns its items to
// stock in one transaction.
func closeOrderAndRestock(ctx context.Context, db *mongo.Database, order *models.Order, status, reason string) error {
	session, err := db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		set := bson.M{"orderStatus": status, "updatedAt": now}
		switch status {
		case models.OrderCancelled:
			set["cancelledAt"] = now
		case models.OrderRejected:
			set["rejectedBySeller"] = true
			if reason != "" {
				set["rejectionReason"] = reason
			}
		}

		if _, err := db.Collection("orders").UpdateOne(sessCtx, bson.M{"_id": order.ID}, bson.M{"$set": set}); err != nil {
			return nil, err
		}

		for _, item := range order.Items {
			_, err := db.Collection("products").UpdateOne(sessCtx,
				bson.M{"_id": item.Product},
				bson.M{"$inc": bson.M{"stock": item.Quantity}},
			)
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
