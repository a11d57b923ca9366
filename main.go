package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"qusar-backend/internal/config"
	"qusar-backend/internal/database"
	"qusar-backend/internal/handlers"
	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
	"qusar-backend/internal/notify"
	"qusar-backend/internal/settings"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			log.Println("[MAIN] [WARN] disconnect failed:", err)
		}
	}()

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] user index:", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] product index:", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] cart index:", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] order index:", err)
	}
	if err := database.EnsureSellerRequestIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] seller request index:", err)
	}
	if err := database.EnsureNotificationIndexes(db); err != nil {
		log.Println("[MAIN] [WARN] notification index:", err)
	}

	provider := settings.NewProvider(db)
	if err := provider.Load(context.Background()); err != nil {
		log.Println("[MAIN] [WARN] payment settings load failed, using defaults:", err)
	}

	dispatcher := notify.NewDispatcher(notify.NewMongoStore(db), 128)
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher.Start(dispatcherCtx)
	defer func() {
		stopDispatcher()
		dispatcher.Wait()
	}()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		database.PurgeExpiredRefreshTokens(db)
	}); err != nil {
		log.Println("[MAIN] [WARN] purge job not scheduled:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.FrontendOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Static("/uploads", config.AppEnv.UploadDir)

	r.GET("/health", handlers.Health(db))

	jwtSecret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL
	refreshTTL := config.AppEnv.RefreshTokenTTL

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db, jwtSecret, accessTTL, refreshTTL))
		auth.POST("/login", handlers.Login(db, jwtSecret, accessTTL, refreshTTL))
		auth.POST("/google", handlers.GoogleLogin(db, jwtSecret, accessTTL, refreshTTL))
		auth.POST("/refresh", handlers.Refresh(db, jwtSecret, accessTTL, refreshTTL))
		auth.POST("/logout", handlers.Logout(db))
	}

	api.GET("/products", handlers.ListProducts(db))
	api.GET("/products/:id", handlers.GetProduct(db))
	api.GET("/categories", handlers.ListCategories())
	api.GET("/payment/settings", handlers.GetPaymentSettings(provider))

	protect := middleware.Protect(db, jwtSecret)

	user := api.Group("/users", protect)
	{
		user.GET("/profile", handlers.GetProfile(db))
		user.PUT("/profile", handlers.UpdateProfile(db))
		user.PUT("/password", handlers.ChangePassword(db))
		user.POST("/avatar", handlers.UploadAvatar(db, config.AppEnv.UploadDir))
		user.POST("/addresses", handlers.AddAddress(db))
		user.PUT("/addresses/:addressId", handlers.UpdateAddress(db))
		user.DELETE("/addresses/:addressId", handlers.DeleteAddress(db))
		user.GET("/wishlist", handlers.GetWishlist(db))
		user.POST("/wishlist/:productId", handlers.AddToWishlist(db))
		user.DELETE("/wishlist/:productId", handlers.RemoveFromWishlist(db))
		user.POST("/become-seller", handlers.BecomeSeller(db))
	}

	api.POST("/products/:id/reviews", protect, handlers.AddReview(db))

	cart := api.Group("/cart", protect)
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("", handlers.AddToCart(db))
		cart.PUT("/:itemId", handlers.UpdateCartItem(db))
		cart.DELETE("/:itemId", handlers.RemoveCartItem(db))
		cart.DELETE("", handlers.ClearCart(db))
	}

	orders := api.Group("/orders", protect)
	{
		orders.POST("", handlers.CreateOrder(db, provider, dispatcher))
		orders.GET("", handlers.GetMyOrders(db))
		orders.GET("/:id", handlers.GetOrderByID(db))
		orders.PUT("/:id/cancel", handlers.CancelOrder(db, dispatcher))
	}

	payment := api.Group("/payment", protect)
	{
		payment.POST("/create-order", handlers.CreateGatewayOrder(db, provider, jwtSecret))
		payment.POST("/verify", handlers.VerifyPayment(db, provider, jwtSecret))
	}

	notifications := api.Group("/notifications", protect)
	{
		notifications.GET("", handlers.ListNotifications(db))
		notifications.PUT("/read-all", handlers.MarkAllNotificationsRead(db))
		notifications.PUT("/:id/read", handlers.MarkNotificationRead(db))
	}

	sellerApply := api.Group("/seller", protect)
	{
		sellerApply.POST("/request", handlers.ApplyForSeller(db, dispatcher))
		sellerApply.GET("/request", handlers.MySellerRequest(db))
		sellerApply.POST("/request/message", handlers.ReplyToSellerRequest(db))
	}

	seller := api.Group("/seller", protect, middleware.RequireApprovedSeller())
	{
		seller.GET("/dashboard", handlers.SellerDashboard(db))
		seller.GET("/products", handlers.SellerProducts(db))
		seller.POST("/products", handlers.AddSellerProduct(db))
		seller.PUT("/products/:id", handlers.UpdateSellerProduct(db))
		seller.DELETE("/products/:id", handlers.DeleteSellerProduct(db))
		seller.GET("/orders", handlers.SellerOrders(db))
		seller.PUT("/orders/:id/confirm", handlers.SellerConfirmOrder(db, dispatcher))
		seller.PUT("/orders/:id/reject", handlers.SellerRejectOrder(db, dispatcher))
	}

	admin := api.Group("/admin", protect, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/dashboard", handlers.AdminDashboard(db))
		admin.GET("/users", handlers.AdminListUsers(db))
		admin.GET("/sellers", handlers.AdminListSellers(db))
		admin.PUT("/sellers/:userId/approve", handlers.AdminApproveSeller(db, dispatcher))
		admin.PUT("/sellers/:userId/reject", handlers.AdminRejectSeller(db, dispatcher))
		admin.DELETE("/sellers/:userId", handlers.AdminRemoveSeller(db))
		admin.GET("/seller-requests", handlers.AdminListSellerRequests(db))
		admin.GET("/seller-requests/:id", handlers.AdminGetSellerRequest(db))
		admin.GET("/seller-requests/user/:userId", handlers.AdminGetSellerRequestByUser(db))
		admin.POST("/seller-requests/user/:userId/message", handlers.AdminMessageSellerRequestByUser(db, dispatcher))
		admin.POST("/seller-requests/:id/message", handlers.AdminMessageSellerRequest(db, dispatcher))
		admin.PUT("/seller-requests/:id/approve", handlers.AdminApproveSellerRequest(db, dispatcher))
		admin.PUT("/seller-requests/:id/reject", handlers.AdminRejectSellerRequest(db, dispatcher))
		admin.GET("/products/pending", handlers.AdminPendingProducts(db))
		admin.PUT("/products/:id/approve", handlers.AdminApproveProduct(db))
		admin.DELETE("/products/:id/reject", handlers.AdminRejectProduct(db))
		admin.GET("/orders", handlers.AdminAllOrders(db))
		admin.PUT("/orders/:id/status", handlers.AdminUpdateOrderStatus(db, dispatcher))
		admin.PUT("/payment/settings", handlers.UpdatePaymentSettings(db, provider, jwtSecret))
	}

	superadmin := api.Group("/admin", protect, middleware.RequireRole(models.RoleSuperAdmin))
	{
		superadmin.POST("/create-admin", handlers.AdminCreateAdmin(db))
		superadmin.POST("/create-superadmin", handlers.AdminCreateSuperAdmin(db))
	}

	log.Println("Server listening on port:", config.AppEnv.Port)
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
