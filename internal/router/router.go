package router

import (
	"time"

	"gestion/internal/bus"
	"gestion/internal/carrito"
	"gestion/internal/config"
	"gestion/internal/handler"
	"gestion/internal/middleware"
	"gestion/internal/repository"
	"gestion/internal/service"
	"gestion/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, loc *time.Location) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	empresaRepo := repository.NewEmpresaRepository(db)
	perfilRepo := repository.NewPerfilRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	eventos := bus.New(rdb)
	dispatcher := worker.NewDispatcher(rdb)
	carritoStore := carrito.NewRedisStore(rdb)

	authSvc := service.NewAuthService(perfilRepo, empresaRepo, cfg)
	empresaSvc := service.NewEmpresaService(empresaRepo)
	productoSvc := service.NewProductoService(productoRepo, historialPrecioRepo, eventos)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo, historialPrecioRepo, eventos)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo, eventos, dispatcher, loc)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoStockRepo, cajaSvc, eventos, dispatcher, loc)
	reporteSvc := service.NewReporteService(ventaRepo, loc)
	carritoSvc := service.NewCarritoService(carritoStore, productoRepo, cajaSvc, ventaSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	empresaH := handler.NewEmpresaHandler(empresaSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	carritoH := handler.NewCarritoHandler(carritoSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	eventosH := handler.NewEventosHandler(eventos, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/registro", authH.RegistrarEmpresa)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/me", authH.Me)

		// Refresh-signal stream — any authenticated terminal
		v1.GET("/eventos", eventosH.Stream)

		// Roles: vendedor, admin — declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("vendedor", "admin"), ventasH.Registrar)
		v1.GET("/ventas", middleware.RequireRole("vendedor", "admin"), ventasH.Listar)

		// Catálogo: lectura para todos, escritura solo admin
		v1.GET("/productos", middleware.RequireRole("vendedor", "admin"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("vendedor", "admin"), productosH.ObtenerPorID)
		v1.GET("/productos/:id/historial-precios", middleware.RequireRole("vendedor", "admin"), productosH.HistorialPrecios)
		prods := v1.Group("/productos", middleware.RequireRole("admin"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		inv := v1.Group("/inventario", middleware.RequireRole("admin"))
		{
			inv.POST("/compras", inventarioH.RegistrarCompra)
			inv.POST("/ajustes", inventarioH.AjustarStock)
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
		}

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", middleware.RequireRole("vendedor", "admin"), cajaH.Abrir)
			caja.POST("/cerrar", middleware.RequireRole("vendedor", "admin"), cajaH.Cerrar)
			caja.GET("/actual", middleware.RequireRole("vendedor", "admin"), cajaH.Actual)
			caja.GET("/historial", middleware.RequireRole("admin"), cajaH.Historial)
		}

		cart := v1.Group("/carrito", middleware.RequireRole("vendedor", "admin"))
		{
			cart.GET("", carritoH.Ver)
			cart.POST("/lineas", carritoH.Agregar)
			cart.PATCH("/lineas/:linea_id/cantidad", carritoH.ActualizarCantidad)
			cart.PATCH("/lineas/:linea_id/precio", carritoH.ActualizarPrecio)
			cart.DELETE("/lineas/:linea_id", carritoH.Quitar)
			cart.DELETE("", carritoH.Vaciar)
			cart.POST("/checkout", carritoH.Checkout)
		}

		rep := v1.Group("/reportes", middleware.RequireRole("admin"))
		{
			rep.GET("/resumen", reportesH.Resumen)
			rep.GET("/ventas-dia", reportesH.VentasDelDia)
			rep.GET("/utilidad-dia", reportesH.UtilidadDelDia)
			rep.GET("/detalle", reportesH.Detalle)
		}

		empresa := v1.Group("/empresa", middleware.RequireRole("admin"))
		{
			empresa.GET("/preferencias-impresion", empresaH.Preferencias)
			empresa.PUT("/preferencias-impresion", empresaH.ActualizarPreferencias)
		}

		perfiles := v1.Group("/perfiles", middleware.RequireRole("admin"))
		{
			perfiles.POST("", authH.CrearPerfil)
			perfiles.GET("", authH.ListarPerfiles)
			perfiles.DELETE("/:id", authH.DesactivarPerfil)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
