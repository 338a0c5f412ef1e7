package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/jogardn/sweetshop/internal/store"
	"github.com/jogardn/sweetshop/internal/validation"
	"github.com/jogardn/sweetshop/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	productCollection = "product"
	orderCollection   = "order"

	// Listing is capped; there is no pagination beyond this.
	productListLimit = 100

	// Collection names and probe errors shown by /test are clipped so the
	// diagnostics payload stays small.
	maxDiagCollections = 10
	maxDiagErrorLen    = 50
)

// EventHub receives fire-and-forget notifications after successful
// writes. Broadcast failures never affect the HTTP response.
type EventHub interface {
	Broadcast(eventType string, data interface{}, source string)
}

type Handler struct {
	store     store.Store
	validator *validation.Validator
	logger    *logrus.Logger
	hub       EventHub
}

func NewHandler(st store.Store, logger *logrus.Logger) *Handler {
	return &Handler{
		store:     st,
		validator: validation.New(),
		logger:    logger,
	}
}

func (h *Handler) SetEventHub(hub EventHub) {
	h.hub = hub
}

// Register wires every endpoint onto the router. Middleware is attached
// by the caller.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/", h.Root).Methods("GET")
	router.HandleFunc("/products", h.ListProducts).Methods("GET", "OPTIONS")
	router.HandleFunc("/products", h.CreateProduct).Methods("POST", "OPTIONS")
	router.HandleFunc("/orders", h.CreateOrder).Methods("POST", "OPTIONS")
	router.HandleFunc("/test", h.Diagnostics).Methods("GET", "OPTIONS")
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Sweet Shop Backend Running",
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := map[string]interface{}{}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	docs, err := h.store.List(r.Context(), productCollection, filter, productListLimit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		h.respondWithError(w, err)
		return
	}

	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		// The store-assigned identifier is not part of the read contract.
		delete(doc, "_id")

		// A stored document that no longer matches the schema is a server
		// problem, not a client one.
		var product models.Product
		if err := decodeDocument(doc, &product); err != nil {
			h.logger.WithError(err).Error("Stored product does not match schema")
			h.respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{"detail": err.Error()})
			return
		}
		if err := h.validator.Struct(product); err != nil {
			h.logger.WithError(err).Error("Stored product does not match schema")
			h.respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{"detail": err.Error()})
			return
		}
		products = append(products, product)
	}

	h.respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.logger.WithError(err).Error("Failed to decode product request")
		h.respondWithError(w, badBody(err))
		return
	}

	if err := h.validator.Struct(product); err != nil {
		h.respondWithError(w, err)
		return
	}

	id, err := h.store.Create(r.Context(), productCollection, product)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save product")
		h.respondWithError(w, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"product_id": id,
		"title":      product.Title,
		"category":   product.Category,
	}).Info("Product created")

	if h.hub != nil {
		h.hub.Broadcast("product_created", map[string]interface{}{
			"id":      id,
			"product": product,
		}, "api")
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.logger.WithError(err).Error("Failed to decode order request")
		h.respondWithError(w, badBody(err))
		return
	}

	if err := h.validator.Struct(order); err != nil {
		h.respondWithError(w, err)
		return
	}

	id, err := h.store.Create(r.Context(), orderCollection, order)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save order")
		h.respondWithError(w, err)
		return
	}

	total := 0.0
	if order.Total != nil {
		total = *order.Total
	}
	h.logger.WithFields(logrus.Fields{
		"order_id":    id,
		"items_count": len(order.Items),
		"total":       total,
	}).Info("Order received")

	if h.hub != nil {
		h.hub.Broadcast("order_received", map[string]interface{}{
			"id":    id,
			"order": order,
		}, "api")
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]string{
		"id":     id,
		"status": "received",
	})
}

// Diagnostics reports the store handle's state and which configuration
// is present. It always answers 200.
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"backend":           "running",
		"database":          "not available",
		"database_url":      presence("DATABASE_URL"),
		"database_name":     presence("DATABASE_NAME"),
		"connection_status": "not connected",
		"collections":       []string{},
	}

	health := h.store.Health(r.Context())
	if health.Connected {
		resp["connection_status"] = "connected"
		if health.Err != nil {
			resp["database"] = "connected but error: " + truncate(health.Err.Error(), maxDiagErrorLen)
		} else {
			resp["database"] = "connected and working"
			cols := health.Collections
			if len(cols) > maxDiagCollections {
				cols = cols[:maxDiagCollections]
			}
			if cols == nil {
				cols = []string{}
			}
			resp["collections"] = cols
		}
	}

	h.respondWithJSON(w, http.StatusOK, resp)
}

// respondWithError collapses typed errors to the boundary contract:
// validation failures become 422 with per-field detail, everything else
// becomes 500 with the error's text.
func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		h.respondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": verr.Fields,
		})
		return
	}

	h.respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"detail": err.Error(),
	})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// badBody turns a JSON decode failure into the same 422 shape as a
// schema violation.
func badBody(err error) error {
	return &validation.Error{Fields: []validation.FieldError{
		{Field: "", Error: "invalid request body: " + err.Error()},
	}}
}

// decodeDocument rebuilds an entity from a stored document via a JSON
// round trip, so type coercion matches the request path.
func decodeDocument(doc map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func presence(key string) string {
	if os.Getenv(key) != "" {
		return "set"
	}
	return "not set"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
