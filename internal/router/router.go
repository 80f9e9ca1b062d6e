package router

import (
	"github.com/resys-shop/core/internal/config"
	"github.com/resys-shop/core/internal/http/handlers"
	"github.com/resys-shop/core/internal/logger"
	"github.com/resys-shop/core/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		orders := apiV1.Group("/orders")
		{
			orders.POST("", handler.CreateOrder)
			orders.GET("/:id", handler.GetOrder)
			orders.GET("/by-number/:number", handler.GetOrderByNumber)
			orders.POST("/:id/line-items", handler.AddLineItem)
			orders.PUT("/:id/line-items/:variant_id", handler.UpdateLineItem)
			orders.DELETE("/:id/line-items/:variant_id", handler.RemoveLineItem)
			orders.POST("/:id/empty", handler.EmptyOrder)
			orders.PUT("/:id/addresses", handler.SetAddresses)
			orders.POST("/:id/next", handler.AdvanceOrder)
			orders.POST("/:id/approve", handler.ApproveOrder)
			orders.POST("/:id/cancel", handler.CancelOrder)
			orders.POST("/:id/promotion", handler.ApplyPromotion)
			orders.DELETE("/:id/promotion", handler.RemovePromotion)

			orders.GET("/:id/shipments", handler.ListShipments)
			orders.POST("/:id/shipments/:shipment_id/items", handler.AddShipmentItem)
			orders.DELETE("/:id/shipments/:shipment_id/items", handler.RemoveShipmentItem)

			orders.POST("/:id/payments", handler.CreatePayment)
			orders.GET("/:id/payments", handler.ListPayments)
		}

		shipments := apiV1.Group("/shipments")
		{
			shipments.POST("/:shipment_id/ready", handler.MarkShipmentReady)
			shipments.POST("/:shipment_id/ship", handler.ShipShipment)
			shipments.POST("/:shipment_id/deliver", handler.DeliverShipment)
			shipments.POST("/:shipment_id/cancel", handler.CancelShipment)
			shipments.POST("/:shipment_id/resume", handler.ResumeShipment)
			shipments.POST("/:shipment_id/pend", handler.PendShipment)
			shipments.POST("/:shipment_id/transfer", handler.TransferUnits)
		}

		payments := apiV1.Group("/payments")
		{
			payments.POST("/:payment_id/authorize", handler.AuthorizePayment)
			payments.POST("/:payment_id/complete-action", handler.CompletePaymentAction)
			payments.POST("/:payment_id/capture", handler.CapturePayment)
			payments.POST("/:payment_id/refund", handler.RefundPayment)
			payments.POST("/:payment_id/void", handler.VoidPayment)
		}
	}

	return r
}
