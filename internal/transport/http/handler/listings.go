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

const listingNotFound = "Listing not found"

// Listings 公开检索 + 经纪人自己的房源管理
type Listings struct {
	Svc *service.ListingService
	Log *zap.Logger
}

func (Listings) Priority() int { return 20 }

type listingQuery struct {
	Q            string   `form:"q"`
	MinPrice     *float64 `form:"minPrice"     binding:"omitempty,gte=0"`
	MaxPrice     *float64 `form:"maxPrice"     binding:"omitempty,gte=0"`
	Beds         *int     `form:"beds"         binding:"omitempty,gte=0"`
	Neighborhood string   `form:"neighborhood"`
	Status       string   `form:"status,default=active" binding:"oneof=active pending sold"`
	Page         int      `form:"page,default=1"        binding:"gte=1,lte=10000"`
	Limit        int      `form:"limit,default=12"      binding:"gte=1,lte=100"`
}

func (q *listingQuery) Normalize() {
	q.Q, q.Neighborhood = strings.TrimSpace(q.Q), strings.TrimSpace(q.Neighborhood)
}

type listingsOut struct {
	Listings   []domain.Listing  `json:"listings"`
	Pagination domain.Pagination `json:"pagination"`
}

type createListingIn struct {
	Title        string   `json:"title"        binding:"required,min=5,max=200"`
	Address      string   `json:"address"      binding:"required,min=5"`
	Neighborhood string   `json:"neighborhood" binding:"required,min=2"`
	Price        float64  `json:"price"        binding:"required,gt=0"`
	Beds         *int     `json:"beds"         binding:"required,gte=0"`
	Baths        *float64 `json:"baths"        binding:"required,gte=0"`
	Sqft         float64  `json:"sqft"         binding:"required,gt=0"`
	Description  string   `json:"description"  binding:"required,min=20,max=5000"`
	ImageURLs    []string `json:"imageUrls"    binding:"required,min=1,dive,url"`
	Status       string   `json:"status"       binding:"omitempty,oneof=active pending sold"`
}

func (in *createListingIn) Normalize() {
	in.Title, in.Address = strings.TrimSpace(in.Title), strings.TrimSpace(in.Address)
	in.Neighborhood, in.Description = strings.TrimSpace(in.Neighborhood), strings.TrimSpace(in.Description)
	for i := range in.ImageURLs {
		in.ImageURLs[i] = strings.TrimSpace(in.ImageURLs[i])
	}
}

type updateListingIn struct {
	Title        *string  `json:"title"        binding:"omitempty,min=5,max=200"`
	Address      *string  `json:"address"      binding:"omitempty,min=5"`
	Neighborhood *string  `json:"neighborhood" binding:"omitempty,min=2"`
	Price        *float64 `json:"price"        binding:"omitempty,gt=0"`
	Beds         *int     `json:"beds"         binding:"omitempty,gte=0"`
	Baths        *float64 `json:"baths"        binding:"omitempty,gte=0"`
	Sqft         *float64 `json:"sqft"         binding:"omitempty,gt=0"`
	Description  *string  `json:"description"  binding:"omitempty,min=20,max=5000"`
	ImageURLs    []string `json:"imageUrls"    binding:"omitempty,dive,url"`
	Status       *string  `json:"status"       binding:"omitempty,oneof=active pending sold"`
}

func (in *updateListingIn) Normalize() {
	in.Title, in.Address = httpez.Trim(in.Title), httpez.Trim(in.Address)
	in.Neighborhood, in.Description = httpez.Trim(in.Neighborhood), httpez.Trim(in.Description)
	for i := range in.ImageURLs {
		in.ImageURLs[i] = strings.TrimSpace(in.ImageURLs[i])
	}
}

type statusIn struct {
	Status     string `json:"status"     binding:"required,oneof=active pending sold"`
	CustomerID string `json:"customerId" binding:"omitempty,objectid"`
}

func (in *statusIn) Normalize() {
	in.Status, in.CustomerID = strings.TrimSpace(in.Status), strings.TrimSpace(in.CustomerID)
}

type listingOut struct {
	Listing *domain.Listing `json:"listing"`
}

func (h Listings) MountAPI(api *gin.RouterGroup) {
	pub := httpez.New(api.Group("/listings"), h.Log)

	httpez.RegisterAction(pub, httpez.Action[listingQuery, listingsOut]{
		Method: http.MethodGet,
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, q *listingQuery) (listingsOut, error) {
			items, page, err := h.Svc.Search(c.Request.Context(), domain.ListingFilter{
				Q:            q.Q,
				MinPrice:     q.MinPrice,
				MaxPrice:     q.MaxPrice,
				MinBeds:      q.Beds,
				Neighborhood: q.Neighborhood,
				Status:       q.Status,
				Page:         q.Page,
				Limit:        q.Limit,
			})
			if err != nil {
				return listingsOut{}, err
			}
			if items == nil {
				items = []domain.Listing{}
			}
			return listingsOut{Listings: items, Pagination: page}, nil
		},
	})

	// 必须先于 /:id 注册
	httpez.RegisterAction(pub, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/neighborhoods",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			hoods, err := h.Svc.Neighborhoods(c.Request.Context())
			if err != nil {
				return nil, err
			}
			if hoods == nil {
				hoods = []string{}
			}
			return gin.H{"neighborhoods": hoods}, nil
		},
	})

	httpez.RegisterAction(pub, httpez.Action[struct{}, listingOut]{
		Method:   http.MethodGet,
		Path:     "/:id",
		Binder:   httpez.BindNone,
		NotFound: listingNotFound,
		Handler: func(c *gin.Context, _ *struct{}) (listingOut, error) {
			l, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				return listingOut{}, err
			}
			return listingOut{Listing: l}, nil
		},
	})

	agent := httpez.New(api.Group("/agent"), h.Log)
	httpez.Crud(agent, httpez.CrudConfig[domain.Listing, createListingIn, updateListingIn]{
		Path:     "/listings",
		Singular: "listing",
		Plural:   "listings",
		NotFound: "Listing not found or unauthorized",
		List: func(c *gin.Context, owner string) ([]domain.Listing, error) {
			return h.Svc.Mine(c.Request.Context(), owner)
		},
		Create: func(c *gin.Context, owner string, in *createListingIn) (*domain.Listing, error) {
			l := &domain.Listing{
				Title:        in.Title,
				Address:      in.Address,
				Neighborhood: in.Neighborhood,
				Price:        in.Price,
				Beds:         *in.Beds,
				Baths:        *in.Baths,
				Sqft:         in.Sqft,
				Description:  in.Description,
				ImageURLs:    in.ImageURLs,
				Status:       in.Status,
			}
			if err := h.Svc.Create(c.Request.Context(), owner, l); err != nil {
				return nil, err
			}
			return l, nil
		},
		Update: func(c *gin.Context, owner, id string, in *updateListingIn) (*domain.Listing, error) {
			if in.ImageURLs != nil && len(in.ImageURLs) == 0 {
				return nil, httpez.Invalid(map[string]string{"imageUrls": "At least one image is required"})
			}
			return h.Svc.Update(c.Request.Context(), id, owner, domain.ListingPatch{
				Title:        in.Title,
				Address:      in.Address,
				Neighborhood: in.Neighborhood,
				Price:        in.Price,
				Beds:         in.Beds,
				Baths:        in.Baths,
				Sqft:         in.Sqft,
				Description:  in.Description,
				ImageURLs:    in.ImageURLs,
				Status:       in.Status,
			})
		},
		Delete: func(c *gin.Context, owner, id string) error {
			return h.Svc.Delete(c.Request.Context(), id, owner)
		},
	})

	httpez.RegisterAction(agent, httpez.Action[statusIn, listingOut]{
		Method:   http.MethodPatch,
		Path:     "/listings/:id/status",
		Binder:   httpez.BindJSON,
		Auth:     true,
		NotFound: "Listing not found or unauthorized",
		Handler: func(c *gin.Context, in *statusIn) (listingOut, error) {
			me := currentID(c)
			l, err := h.Svc.SetStatus(c.Request.Context(), c.Param("id"), me, in.Status, in.CustomerID)
			if err != nil {
				return listingOut{}, err
			}
			return listingOut{Listing: l}, nil
		},
	})
}
