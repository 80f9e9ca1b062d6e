package provider

import (
	"github.com/resys-shop/core/internal/cache"
	"github.com/resys-shop/core/internal/config"
	"github.com/resys-shop/core/internal/logger"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/payment"
	"github.com/resys-shop/core/internal/payment/sandbox"
	"github.com/resys-shop/core/internal/queue"
	"github.com/resys-shop/core/internal/repository"
	"github.com/resys-shop/core/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Gateway     payment.Adapter

	// Repositories
	OrderRepo     repository.OrderRepository
	ShipmentRepo  repository.ShipmentRepository
	StockRepo     repository.StockRepository
	CatalogRepo   repository.CatalogRepository
	PromotionRepo repository.PromotionRepository
	PaymentRepo   repository.PaymentRepository
	AddressRepo   repository.AddressRepository

	// Services
	PromotionService   *service.PromotionService
	FulfillmentService *service.FulfillmentService
	OrderService       *service.OrderService
	PaymentService     *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化网关适配器与 Services
	c.initGateway()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.StockRepo = repository.NewStockRepository(db)
	c.CatalogRepo = repository.NewCatalogRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
}

func (c *Container) initGateway() {
	switch c.Config.Gateway.Provider {
	case "", "sandbox":
		c.Gateway = sandbox.New()
	default:
		logger.Warnw("provider_unknown_gateway_falling_back_sandbox", "provider", c.Config.Gateway.Provider)
		c.Gateway = sandbox.New()
	}
}

func (c *Container) initServices() {
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, c.CatalogRepo, c.OrderRepo)
	c.FulfillmentService = service.NewFulfillmentService(c.ShipmentRepo, c.StockRepo, c.CatalogRepo, c.OrderRepo, c.QueueClient, models.Money(c.Config.Order.ShippingFlatRate))
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CatalogRepo, c.PromotionRepo, c.AddressRepo, c.PromotionService, c.FulfillmentService, c.QueueClient, c.Config.Order.AllocationStrategy)
	c.PaymentService = service.NewPaymentService(c.PaymentRepo, c.OrderRepo, c.Gateway, c.QueueClient)
}
