package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realty-api/internal/domain"
	"realty-api/internal/service"
	httpez "realty-api/internal/transport/http/ez"
)

type Inquiries struct {
	Svc     *service.InquiryService
	Limiter gin.HandlerFunc // IP + listingId
	Log     *zap.Logger
}

func (Inquiries) Priority() int { return 30 }

type inquiryIn struct {
	ListingID string `json:"listingId" binding:"required,objectid"`
	Name      string `json:"name"      binding:"required,min=2,max=100"`
	Email     string `json:"email"     binding:"required,email"`
	Phone     string `json:"phone"     binding:"omitempty,phone"`
	Message   string `json:"message"   binding:"required,min=10,max=2000"`
}

func (in *inquiryIn) Normalize() {
	in.ListingID, in.Name = strings.TrimSpace(in.ListingID), strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone, in.Message = strings.TrimSpace(in.Phone), strings.TrimSpace(in.Message)
}

type inquiryRef struct {
	ID string `json:"id"`
}

type inquiryOut struct {
	OK      bool       `json:"ok"`
	Inquiry inquiryRef `json:"inquiry"`
}

func (h Inquiries) MountAPI(api *gin.RouterGroup) {
	submit := api.Group("/inquiries")
	if h.Limiter != nil {
		submit.Use(h.Limiter)
	}
	httpez.RegisterAction(httpez.New(submit, h.Log), httpez.Action[inquiryIn, inquiryOut]{
		Method:   http.MethodPost,
		Binder:   httpez.BindJSON,
		Status:   http.StatusCreated,
		NotFound: listingNotFound,
		Handler: func(c *gin.Context, in *inquiryIn) (inquiryOut, error) {
			inq, err := h.Svc.Submit(c.Request.Context(), service.NewInquiry{
				ListingID: in.ListingID,
				Name:      in.Name,
				Email:     in.Email,
				Phone:     in.Phone,
				Message:   in.Message,
			})
			if err != nil {
				return inquiryOut{}, err
			}
			return inquiryOut{OK: true, Inquiry: inquiryRef{ID: inq.ID}}, nil
		},
	})

	httpez.RegisterAction(httpez.New(api.Group("/agent"), h.Log), httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/inquiries",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			items, err := h.Svc.ForAgent(c.Request.Context(), currentID(c))
			if err != nil {
				return nil, err
			}
			if items == nil {
				items = []domain.Inquiry{}
			}
			return gin.H{"inquiries": items}, nil
		},
	})
}
