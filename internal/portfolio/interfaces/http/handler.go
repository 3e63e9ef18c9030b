package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	exchangehttp "github.com/wyfcoding/p2pexchange/internal/exchange/interfaces/http"
	"github.com/wyfcoding/p2pexchange/internal/portfolio/application"
	"github.com/wyfcoding/p2pexchange/internal/portfolio/domain"
	"github.com/wyfcoding/p2pexchange/pkg/response"
)

// PortfolioHandler 资金配置 HTTP 处理器
type PortfolioHandler struct {
	svc *application.PortfolioService
}

func NewPortfolioHandler(svc *application.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *PortfolioHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/p2p/portfolios")
	{
		api.POST("", h.Create)
		api.GET("", h.ListMine)
		api.GET("/:id", h.Get)
		api.PATCH("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
	}
}

// CreatePortfolioRequest 创建请求
type CreatePortfolioRequest struct {
	Currency        string           `json:"currency" binding:"required,currency"`
	AvailableAmount *decimal.Decimal `json:"availableAmount"`
	ExchangeRate    *decimal.Decimal `json:"exchangeRate"`
	exchangehttp.PaymentFields
}

// UpdatePortfolioRequest 更新请求
type UpdatePortfolioRequest struct {
	AvailableAmount *decimal.Decimal `json:"availableAmount"`
	ExchangeRate    *decimal.Decimal `json:"exchangeRate"`
	BankName        *string          `json:"bankName"`
	AccountNumber   *string          `json:"accountNumber"`
	AccountName     *string          `json:"accountName"`
	InteracEmail    *string          `json:"interacEmail" binding:"omitempty,email"`
}

func (h *PortfolioHandler) Create(c *gin.Context) {
	var req CreatePortfolioRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	currency, err := exchange.ParseCurrency(req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.svc.Create(c.Request.Context(), application.CreatePortfolioCommand{
		UserID:          exchangehttp.CurrentUser(c),
		Currency:        currency,
		AvailableAmount: orZero(req.AvailableAmount),
		ExchangeRate:    orZero(req.ExchangeRate),
		Payment:         req.Details(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Portfolio created successfully", dto)
}

func (h *PortfolioHandler) ListMine(c *gin.Context) {
	items, err := h.svc.ListMine(c.Request.Context(), exchangehttp.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Portfolios retrieved successfully", items)
}

func (h *PortfolioHandler) Get(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	dto, err := h.svc.Get(c.Request.Context(), id, exchangehttp.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Portfolio retrieved successfully", dto)
}

func (h *PortfolioHandler) Update(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req UpdatePortfolioRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.svc.Update(c.Request.Context(), id, exchangehttp.CurrentUser(c), domain.Patch{
		AvailableAmount: req.AvailableAmount,
		ExchangeRate:    req.ExchangeRate,
		BankName:        req.BankName,
		AccountNumber:   req.AccountNumber,
		AccountName:     req.AccountName,
		InteracEmail:    req.InteracEmail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Portfolio updated successfully", dto)
}

func (h *PortfolioHandler) Delete(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, exchangehttp.CurrentUser(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusOK, "Portfolio deleted successfully", gin.H{"id": id})
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
