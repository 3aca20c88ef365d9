package router

import (
	"time"

	"gustito/backend/internal/config"
	"gustito/backend/internal/handler"
	"gustito/backend/internal/infra"
	"gustito/backend/internal/middleware"
	"gustito/backend/internal/notify"
	"gustito/backend/internal/repository"
	"gustito/backend/internal/service"
	"gustito/backend/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps bundles what New returns beyond the engine: the pieces main has to
// start (worker pool, sweep) and stop.
type Deps struct {
	Pool         *worker.Pool
	StockService service.StockService
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailerCB *infra.CircuitBreaker) (*gin.Engine, *Deps) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	precioRepo := repository.NewPrecioRepository(db)
	stockRepo := repository.NewStockRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	metaRepo := repository.NewMetaRepository(db)
	notifRepo := repository.NewNotificacionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	notifier := notify.NewRedisNotifier(notifRepo, rdb)
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, precioRepo, proveedorRepo, stockRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	stockSvc := service.NewStockService(stockRepo, proveedorRepo, notifRepo, notifier)
	precioSvc := service.NewPrecioService(precioRepo, productoRepo, notifRepo, notifier)
	cajaSvc := service.NewCajaService(cajaRepo, sucursalRepo, metaRepo, notifRepo, notifier)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, clienteRepo, productoRepo, sucursalRepo, stockSvc, precioSvc, dispatcher)
	analyticsSvc := service.NewAnalyticsService(ventaRepo, metaRepo)
	notifSvc := service.NewNotificacionService(notifRepo)

	// ── Worker pool (started by main) ────────────────────────────────────────
	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueTicket, worker.NewTicketWorker(ventaRepo, dispatcher, cfg.PDFStoragePath))
	pool.Register(worker.QueueEmail, worker.NewEmailWorker(mailer, mailerCB))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	sucursalesH := handler.NewSucursalesHandler(sucursalRepo)
	clientesH := handler.NewClientesHandler(clienteSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	preciosH := handler.NewPreciosHandler(precioSvc)
	stockH := handler.NewStockHandler(stockSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	analyticsH := handler.NewAnalyticsHandler(analyticsSvc)
	notificacionesH := handler.NewNotificacionesHandler(notifSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailerCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(middleware.RolAdmin, middleware.RolVendedor)
	adminOnly := middleware.RequireRole(middleware.RolAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Ventas
		v1.POST("/ventas", anyRole, ventasH.Crear)
		v1.GET("/ventas", anyRole, ventasH.Listar)
		v1.GET("/ventas/sin-caja", anyRole, ventasH.ListarSinCaja)
		v1.GET("/ventas/:id", anyRole, ventasH.Obtener)
		v1.DELETE("/ventas/:id", adminOnly, ventasH.Eliminar)

		// Caja
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", anyRole, cajaH.Abrir)
			caja.POST("/:id/cerrar", anyRole, cajaH.Cerrar)
			caja.GET("/abierta", anyRole, cajaH.Abierta)
			caja.GET("/:id/resumen", anyRole, cajaH.Resumen)
			caja.GET("", anyRole, cajaH.Listar)
			caja.DELETE("/:id", adminOnly, cajaH.Eliminar)
			caja.POST("/depositos", anyRole, cajaH.RegistrarDeposito)
			caja.POST("/egresos", anyRole, cajaH.RegistrarEgreso)
			caja.GET("/saldo", anyRole, cajaH.Saldo)
			caja.POST("/saldo/reset", adminOnly, cajaH.ResetSaldo)
		}

		// Productos y empaques
		v1.GET("/productos", anyRole, productosH.Listar)
		v1.GET("/productos/:id", anyRole, productosH.Obtener)
		v1.GET("/productos/:id/precios", anyRole, preciosH.ListarPorProducto)
		prods := v1.Group("/productos", adminOnly)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
		}
		v1.GET("/empaques", anyRole, productosH.ListarEmpaques)
		v1.POST("/empaques", adminOnly, productosH.CrearEmpaque)
		v1.DELETE("/empaques/:id", adminOnly, productosH.EliminarEmpaque)

		// Precios: solicitudes de precio especial + precios estandar
		precios := v1.Group("/precios")
		{
			precios.POST("/solicitudes", anyRole, preciosH.Solicitar)
			precios.GET("/solicitudes", adminOnly, preciosH.ListarPendientes)
			precios.POST("/solicitudes/:id/aprobar", adminOnly, preciosH.Aprobar)
			precios.POST("/solicitudes/:id/rechazar", adminOnly, preciosH.Rechazar)
			precios.POST("", adminOnly, preciosH.Crear)
			precios.DELETE("/:id", adminOnly, preciosH.Eliminar)
		}

		// Stock
		stock := v1.Group("/stock")
		{
			stock.POST("/entregas", adminOnly, stockH.RegistrarEntrega)
			stock.POST("/eliminar", adminOnly, stockH.Eliminar)
			stock.GET("", anyRole, stockH.Listar)
			stock.GET("/disponible", anyRole, stockH.Disponible)
			stock.GET("/vencimientos", anyRole, stockH.ListarVencimientos)
			stock.POST("/vencimientos/:id/resolver", adminOnly, stockH.ResolverVencimiento)
		}

		// Proveedores
		v1.GET("/proveedores", anyRole, productosH.ListarProveedores)
		v1.POST("/proveedores", adminOnly, productosH.CrearProveedor)

		// Clientes
		clientes := v1.Group("/clientes", anyRole)
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
		}
		v1.DELETE("/clientes/:id", adminOnly, clientesH.Eliminar)

		// Sucursales
		v1.GET("/sucursales", anyRole, sucursalesH.Listar)
		v1.GET("/sucursales/:id", anyRole, sucursalesH.Obtener)
		v1.POST("/sucursales", adminOnly, sucursalesH.Crear)
		v1.PUT("/sucursales/:id", adminOnly, sucursalesH.Actualizar)

		// Analytics y metas
		analytics := v1.Group("/analytics", anyRole)
		{
			analytics.GET("/ventas-semanales", analyticsH.VentasSemanales)
			analytics.GET("/productos-top", analyticsH.ProductosTop)
		}
		v1.GET("/metas", anyRole, analyticsH.ListarMetas)
		v1.POST("/metas", adminOnly, analyticsH.CrearMeta)

		// Notificaciones
		v1.GET("/notificaciones", anyRole, notificacionesH.Listar)
		v1.POST("/notificaciones/:id/leida", anyRole, notificacionesH.MarcarLeida)

		// Usuarios
		usuarios := v1.Group("/usuarios", adminOnly)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, &Deps{Pool: pool, StockService: stockSvc}
}
