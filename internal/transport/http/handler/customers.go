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

const customerNotFound = "Customer not found"

type Customers struct {
	Svc *service.CustomerService
	Log *zap.Logger
}

func (Customers) Priority() int { return 40 }

type createCustomerIn struct {
	FirstName     string   `json:"firstName"     binding:"required,min=2,max=50"`
	LastName      string   `json:"lastName"      binding:"required,min=2,max=50"`
	Email         string   `json:"email"         binding:"required,email"`
	Phone         string   `json:"phone"         binding:"required,min=10"`
	Address       *string  `json:"address"`
	PurchaseDate  *string  `json:"purchaseDate"  binding:"omitempty,isodate"`
	PurchasePrice *float64 `json:"purchasePrice" binding:"omitempty,gt=0"`
	Notes         *string  `json:"notes"         binding:"omitempty,max=1000"`
	ListingID     *string  `json:"listingId"     binding:"omitempty,objectid"`
}

func (in *createCustomerIn) Normalize() {
	in.FirstName, in.LastName = strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = cleanPhone(in.Phone)
	in.Address, in.PurchaseDate = blankToNil(in.Address), blankToNil(in.PurchaseDate)
	in.Notes, in.ListingID = blankToNil(in.Notes), blankToNil(in.ListingID)
}

type updateCustomerIn struct {
	FirstName     *string  `json:"firstName"     binding:"omitempty,min=2,max=50"`
	LastName      *string  `json:"lastName"      binding:"omitempty,min=2,max=50"`
	Email         *string  `json:"email"         binding:"omitempty,email"`
	Phone         *string  `json:"phone"         binding:"omitempty,min=10"`
	Address       *string  `json:"address"`
	PurchaseDate  *string  `json:"purchaseDate"  binding:"omitempty,isodate"`
	PurchasePrice *float64 `json:"purchasePrice" binding:"omitempty,gt=0"`
	Notes         *string  `json:"notes"         binding:"omitempty,max=1000"`
	ListingID     *string  `json:"listingId"     binding:"omitempty,objectid"`
}

func (in *updateCustomerIn) Normalize() {
	in.FirstName, in.LastName = httpez.Trim(in.FirstName), httpez.Trim(in.LastName)
	in.Email, in.Phone = httpez.Lower(in.Email), cleanPhonePtr(in.Phone)
	in.Address, in.Notes = httpez.Trim(in.Address), httpez.Trim(in.Notes)
	in.PurchaseDate, in.ListingID = blankToNil(in.PurchaseDate), blankToNil(in.ListingID)
}

type linkIn struct {
	ListingID string `json:"listingId" binding:"required,objectid"`
}

func (in *linkIn) Normalize() { in.ListingID = strings.TrimSpace(in.ListingID) }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (h Customers) MountAPI(api *gin.RouterGroup) {
	agent := httpez.New(api.Group("/agent"), h.Log)

	httpez.Crud(agent, httpez.CrudConfig[domain.Customer, createCustomerIn, updateCustomerIn]{
		Path:     "/customers",
		Singular: "customer",
		Plural:   "customers",
		NotFound: customerNotFound,
		List: func(c *gin.Context, owner string) ([]domain.Customer, error) {
			return h.Svc.List(c.Request.Context(), owner, strings.TrimSpace(c.Query("q")))
		},
		Create: func(c *gin.Context, owner string, in *createCustomerIn) (*domain.Customer, error) {
			cu := &domain.Customer{
				FirstName:     in.FirstName,
				LastName:      in.LastName,
				Email:         in.Email,
				Phone:         in.Phone,
				Address:       deref(in.Address),
				PurchasePrice: in.PurchasePrice,
				Notes:         deref(in.Notes),
				ListingID:     deref(in.ListingID),
			}
			if in.PurchaseDate != nil {
				d, _ := httpez.ParseDate(*in.PurchaseDate)
				cu.PurchaseDate = &d
			}
			if err := h.Svc.Create(c.Request.Context(), owner, cu); err != nil {
				return nil, err
			}
			return cu, nil
		},
		Update: func(c *gin.Context, owner, id string, in *updateCustomerIn) (*domain.Customer, error) {
			p := domain.CustomerPatch{
				FirstName:     in.FirstName,
				LastName:      in.LastName,
				Email:         in.Email,
				Phone:         in.Phone,
				Address:       in.Address,
				PurchasePrice: in.PurchasePrice,
				Notes:         in.Notes,
				ListingID:     in.ListingID,
			}
			if in.PurchaseDate != nil {
				d, _ := httpez.ParseDate(*in.PurchaseDate)
				p.PurchaseDate = &d
			}
			return h.Svc.Update(c.Request.Context(), id, owner, p)
		},
		Delete: func(c *gin.Context, owner, id string) error {
			return h.Svc.Delete(c.Request.Context(), id, owner)
		},
	})

	httpez.RegisterAction(agent, httpez.Action[linkIn, gin.H]{
		Method:   http.MethodPost,
		Path:     "/customers/:id/link",
		Binder:   httpez.BindJSON,
		Auth:     true,
		NotFound: customerNotFound,
		Handler: func(c *gin.Context, in *linkIn) (gin.H, error) {
			cu, err := h.Svc.Link(c.Request.Context(), c.Param("id"), currentID(c), in.ListingID)
			if err != nil {
				return nil, err
			}
			return gin.H{"customer": cu}, nil
		},
	})
}
