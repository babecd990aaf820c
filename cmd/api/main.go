package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	appcheckout "github.com/xiebiao/bookshop/internal/application/checkout"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/eventbus"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// main 主程序入口
// 说明：手动依赖注入，组装顺序 Repository ← Service ← UseCase ← Handler
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化链路追踪(可选)
	shutdownTracer := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		shutdownTracer, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorURL)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		fmt.Printf("  - Tracing: %s\n", cfg.Tracing.CollectorURL)
	}

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 5. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 6. 初始化消息队列(可选,关闭时订单事件只写日志)
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		publisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化RabbitMQ失败: %v", err)
		}
		defer publisher.Close()
		fmt.Printf("  - RabbitMQ: exchange=%s\n", cfg.MQ.Exchange)
	}
	orderEvents := eventbus.NewOrderEventPublisher(publisher, cfg.MQ.Exchange)

	// 7. 依赖注入(手动组装)

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	addressRepo := mysql.NewAddressRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	checkoutStore := redis.NewCheckoutStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	refreshUseCase := appuser.NewRefreshTokenUseCase(jwtManager, sessionStore)

	publishBookUseCase := appbook.NewPublishBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	manageSaleUseCase := appbook.NewManageSaleUseCase(bookService)

	addItemUseCase := appcart.NewAddItemUseCase(cartRepo, bookService)
	getCartUseCase := appcart.NewGetCartUseCase(cartRepo, bookRepo)
	removeItemUseCase := appcart.NewRemoveItemUseCase(cartRepo)
	clearCartUseCase := appcart.NewClearCartUseCase(cartRepo)

	placeOrderUseCase := apporder.NewPlaceOrderUseCase(
		orderRepo, bookRepo, cartRepo, userRepo, txManager, orderEvents)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo, bookRepo)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo, bookRepo)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(
		orderRepo, bookRepo, userRepo, addressRepo, txManager)
	updateStatusUseCase := apporder.NewUpdateStatusUseCase(orderRepo)

	summaryUseCase := appcheckout.NewSummaryUseCase(checkoutStore, cartRepo, addressRepo, bookService)
	selectFieldUseCase := appcheckout.NewSelectFieldUseCase(checkoutStore)
	submitValueUseCase := appcheckout.NewSubmitValueUseCase(checkoutStore)
	confirmOrderUseCase := appcheckout.NewConfirmOrderUseCase(checkoutStore, addressRepo, placeOrderUseCase)
	cancelUseCase := appcheckout.NewCancelUseCase(checkoutStore)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, refreshUseCase)
	bookHandler := handler.NewBookHandler(publishBookUseCase, listBooksUseCase, manageSaleUseCase)
	cartHandler := handler.NewCartHandler(addItemUseCase, getCartUseCase, removeItemUseCase, clearCartUseCase)
	checkoutHandler := handler.NewCheckoutHandler(
		summaryUseCase, selectFieldUseCase, submitValueUseCase, confirmOrderUseCase, cancelUseCase)
	orderHandler := handler.NewOrderHandler(
		listOrdersUseCase, getOrderUseCase, cancelOrderUseCase, updateStatusUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, bookHandler, cartHandler, checkoutHandler, orderHandler, authMiddleware)

	// 9. 启动服务(优雅退出:等存量请求处理完再关闭)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	<-ctx.Done()
	fmt.Println("\n正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭HTTP服务失败: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("关闭链路追踪失败: %v", err)
	}
	fmt.Println("服务已退出")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档(生产环境建议禁用或加访问控制)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refresh", userHandler.RefreshToken)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 浏览和搜索是公开接口
			books.GET("", bookHandler.ListBooks)

			// 上架和促销管理需要登录
			books.POST("", authMiddleware.RequireAuth(), bookHandler.PublishBook)
			books.POST("/:id/sale", authMiddleware.RequireAuth(), bookHandler.StartSale)
			books.DELETE("/:id/sale", authMiddleware.RequireAuth(), bookHandler.StopSale)
			books.PUT("/:id/price", authMiddleware.RequireAuth(), bookHandler.UpdatePrice)
		}

		// 购物车模块(都需要登录)
		cart := v1.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.DELETE("/items/:book_id", cartHandler.RemoveItem)
		}

		// 结账模块(都需要登录)
		checkout := v1.Group("/checkout")
		checkout.Use(authMiddleware.RequireAuth())
		{
			checkout.GET("", checkoutHandler.Summary)
			checkout.DELETE("", checkoutHandler.Cancel)
			checkout.POST("/field", checkoutHandler.SelectField)
			checkout.POST("/value", checkoutHandler.SubmitValue)
			checkout.POST("/confirm", checkoutHandler.Confirm)
		}

		// 订单模块(都需要登录)
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:order_no", orderHandler.GetOrder)
			orders.DELETE("/:order_no", orderHandler.CancelOrder)
			orders.POST("/:order_no/deliver", orderHandler.DeliverOrder)
			orders.POST("/:order_no/complete", orderHandler.CompleteOrder)
		}
	}
}
