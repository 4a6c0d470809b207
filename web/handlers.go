package web

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/identity"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/order"
)

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// renderError maps domain errors onto HTTP statuses in one place. Anything
// outside the taxonomy is a 500 and gets logged; nothing is retried or
// swallowed.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrNoCart),
		errors.Is(err, order.ErrOrderNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrUnauthorized),
		errors.Is(err, identity.ErrInvalidCredentials):
		c.JSON(401, gin.H{"error": err.Error()})
	case errors.Is(err, identity.ErrPasswordMismatch),
		errors.Is(err, identity.ErrUsernameTaken),
		errors.Is(err, identity.ErrUsernameRequired):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(500, gin.H{"error": "internal error"})
	}
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.catalog.List(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"products": products, "total": len(products)})
}

func (s *Server) seedCatalog(c *gin.Context) {
	if err := s.catalog.Seed(c.Request.Context()); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"ok": true})
}

// viewCart renders the session's cart. A session with no cart yet shows an
// empty cart; viewing never creates one.
func (s *Server) viewCart(c *gin.Context) {
	ctx := c.Request.Context()
	sid := c.GetString(ctxSessionID)

	cartID, err := s.binder.ResolveCart(ctx, sid)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if cartID == "" {
		c.JSON(200, gin.H{"items": []models.CartItem{}, "total": decimal.Zero})
		return
	}

	items, err := s.carts.ListItems(ctx, cartID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	total, err := s.carts.Total(ctx, cartID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"items": items, "total": total})
}

func (s *Server) cartCount(c *gin.Context) {
	count, err := s.carts.ItemCount(c.Request.Context(), c.GetString(ctxSessionID))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"count": count})
}

func (s *Server) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "product_id is required"})
		return
	}

	ctx := c.Request.Context()
	shopperCart, err := s.carts.GetOrCreate(ctx, c.GetString(ctxSessionID))
	if err != nil {
		s.renderError(c, err)
		return
	}

	item, err := s.carts.AddItem(ctx, shopperCart, req.ProductID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"item": item})
}

func (s *Server) increaseQuantity(c *gin.Context) {
	item, err := s.carts.IncreaseQuantity(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"item": item})
}

func (s *Server) decreaseQuantity(c *gin.Context) {
	if err := s.carts.DecreaseQuantity(c.Request.Context(), c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"ok": true})
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "username, password1 and password2 are required"})
		return
	}

	user, err := s.identity.Register(c.Request.Context(), req.Username, req.Password1, req.Password2)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(201, gin.H{"id": user.ID, "username": user.Username})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()
	sid := c.GetString(ctxSessionID)
	principal, err := s.identity.Login(ctx, sid, req.Username, req.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}

	// The anonymous cart follows the shopper through login.
	if err := s.carts.Claim(ctx, sid, principal.ID); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"id": principal.ID, "username": principal.Username})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.identity.Logout(c.Request.Context(), c.GetString(ctxSessionID)); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"ok": true})
}

// checkoutView shows the lines about to be ordered.
func (s *Server) checkoutView(c *gin.Context) {
	ctx := c.Request.Context()
	principal := currentPrincipal(c)

	if err := s.carts.Claim(ctx, c.GetString(ctxSessionID), principal.ID); err != nil {
		s.renderError(c, err)
		return
	}

	userCart, err := s.carts.GetByUser(ctx, principal.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	items, err := s.carts.ListItems(ctx, userCart.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	total, err := s.carts.Total(ctx, userCart.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"items": items, "total": total})
}

func (s *Server) checkoutSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	principal := currentPrincipal(c)

	if err := s.carts.Claim(ctx, c.GetString(ctxSessionID), principal.ID); err != nil {
		s.renderError(c, err)
		return
	}

	placed, err := s.orders.Checkout(ctx, principal)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(201, gin.H{"order": placed})
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.orders.ListByUser(c.Request.Context(), currentPrincipal(c).ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"orders": orders, "total": len(orders)})
}

func (s *Server) getOrder(c *gin.Context) {
	placed, err := s.orders.Get(c.Request.Context(), c.Param("id"), currentPrincipal(c).ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"order": placed})
}
