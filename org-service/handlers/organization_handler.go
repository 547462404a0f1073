package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"eduadmin-backend/org-service/services"
	"eduadmin-backend/shared/orgtree"
	"eduadmin-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OperatorHeader carries the opaque operator name recorded in audit fields.
const OperatorHeader = "X-Operator"

// OrganizationResponse represents organization data for API responses
type OrganizationResponse struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	ParentID     *uuid.UUID     `json:"parent_id"`
	Level        int            `json:"level"`
	PaletteIndex int            `json:"palette_index"`
	Direct       orgtree.Counts `json:"direct"`
	Totals       orgtree.Counts `json:"totals"`
	Creator      string         `json:"creator"`
	Updater      string         `json:"updater"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// TreeNodeResponse is one node of the diagram tree
type TreeNodeResponse struct {
	OrganizationResponse
	Expanded bool               `json:"expanded"`
	Children []TreeNodeResponse `json:"children"`
}

// CreateOrganizationRequest represents request body for creating organization
type CreateOrganizationRequest struct {
	Name     string     `json:"name" binding:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// OptionalUUID is a JSON field that tells an explicit null apart from an absent key.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// UpdateOrganizationRequest represents request body for updating organization.
// Absent fields are left unchanged. "parent_id": null moves the organization to the
// top level; clear_parent is accepted as an alias.
type UpdateOrganizationRequest struct {
	Name        *string      `json:"name"`
	ParentID    OptionalUUID `json:"parent_id" swaggertype:"string" format:"uuid"`
	ClearParent bool         `json:"clear_parent"`
}

// OrganizationListData is one page of the flattened directory plus the full tree
type OrganizationListData struct {
	Items      []OrganizationResponse   `json:"items"`
	Total      int                      `json:"total"`
	Pagination query.PaginationResponse `json:"pagination"`
	Tree       []TreeNodeResponse       `json:"tree"`
	Seq        *uint64                  `json:"seq,omitempty"`
}

// OrganizationListResponse represents the list endpoint body
type OrganizationListResponse struct {
	Success bool                 `json:"success"`
	Data    OrganizationListData `json:"data"`
}

// SingleOrganizationResponse represents a single organization response
type SingleOrganizationResponse struct {
	Success  bool                 `json:"success"`
	Data     OrganizationResponse `json:"data"`
	Warnings []string             `json:"warnings,omitempty"`
}

// ErrorResponse is returned for every refused or failed request
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	Dependent string `json:"dependent,omitempty"`
}

// HandlerOptions tunes presentation details of the organization endpoints
type HandlerOptions struct {
	PaletteSize  int
	DefaultLimit int
	MaxLimit     int
}

// OrganizationHandler serves the organization directory over HTTP
type OrganizationHandler struct {
	svc  *services.DirectoryService
	opts HandlerOptions
	log  *zap.Logger
}

func NewOrganizationHandler(svc *services.DirectoryService, opts HandlerOptions, log *zap.Logger) *OrganizationHandler {
	if opts.PaletteSize <= 0 {
		opts.PaletteSize = 4
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrganizationHandler{svc: svc, opts: opts, log: log}
}

// RegisterRoutes mounts the organization endpoints on r
func (h *OrganizationHandler) RegisterRoutes(r gin.IRouter) {
	orgs := r.Group("/api/organizations")
	orgs.GET("", h.GetOrganizations)
	orgs.GET("/options", h.GetOrganizationOptions)
	orgs.POST("/export", h.ExportOrganizations)
	orgs.GET("/:id", h.GetOrganization)
	orgs.POST("", h.CreateOrganization)
	orgs.PUT("/:id", h.UpdateOrganization)
	orgs.DELETE("/:id", h.DeleteOrganization)
}

func (h *OrganizationHandler) toResponse(n *orgtree.Node) OrganizationResponse {
	return OrganizationResponse{
		ID:           n.ID,
		Name:         n.Name,
		ParentID:     n.ParentID,
		Level:        n.Level,
		PaletteIndex: orgtree.PaletteIndex(n.Level, h.opts.PaletteSize),
		Direct:       n.Direct,
		Totals:       n.Totals,
		Creator:      n.Creator,
		Updater:      n.Updater,
		CreatedAt:    n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    n.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *OrganizationHandler) toEntries(entries []orgtree.Entry) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, h.toResponse(e.Node))
	}
	return out
}

// toTree renders the forest with the default expand state: roots and their direct
// children open, everything deeper collapsed.
func (h *OrganizationHandler) toTree(forest orgtree.Forest) []TreeNodeResponse {
	state := orgtree.NewExpandState()
	state.DefaultExpand(forest)

	var render func(nodes []*orgtree.Node) []TreeNodeResponse
	render = func(nodes []*orgtree.Node) []TreeNodeResponse {
		out := make([]TreeNodeResponse, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, TreeNodeResponse{
				OrganizationResponse: h.toResponse(n),
				Expanded:             state.IsExpanded(n.ID),
				Children:             render(n.Children),
			})
		}
		return out
	}
	return render(forest)
}

func parseID(ctx *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid organization ID format",
			Code:  "validation",
			Field: "id",
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service and guard errors onto HTTP status codes
func (h *OrganizationHandler) respondError(ctx *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Code: "validation", Field: verr.Field})
		return
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "Organization not found", Code: "not_found"})
		return
	case errors.Is(err, services.ErrExportDisabled):
		ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "export_disabled"})
		return
	}

	if rej, ok := orgtree.AsRejection(err); ok {
		status := http.StatusConflict
		if rej.Reason.Referential() {
			status = http.StatusUnprocessableEntity
		}
		ctx.JSON(status, ErrorResponse{
			Error:     rej.Message(),
			Code:      string(rej.Reason),
			Dependent: string(rej.Dependent),
		})
		return
	}

	h.log.Error("❌ Organization request failed",
		zap.String("path", ctx.FullPath()),
		zap.Error(err))
	ctx.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "The directory is temporarily unavailable, please retry",
		Code:  "transient",
	})
}

// GetOrganizations lists the flattened directory
// @Summary List organizations
// @Description Flattened directory in pre-order with levels, filtered by name and paginated, plus the full tree
// @Tags organizations
// @Accept json
// @Produce json
// @Param skip query int false "Entries to skip (default: 0)"
// @Param limit query int false "Page size (default: 20)"
// @Param search query string false "Case-insensitive substring of the organization name"
// @Param seq query int false "Client request number, echoed back"
// @Success 200 {object} handlers.OrganizationListResponse
// @Failure 500 {object} handlers.ErrorResponse "Storage unavailable"
// @Router /organizations [get]
func (h *OrganizationHandler) GetOrganizations(ctx *gin.Context) {
	params := query.ParseListParams(ctx, h.opts.DefaultLimit, h.opts.MaxLimit)

	result, err := h.svc.List(ctx.Request.Context(), services.ListParams{
		Skip:   params.Skip,
		Limit:  params.Limit,
		Search: params.Search,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, OrganizationListResponse{
		Success: true,
		Data: OrganizationListData{
			Items:      h.toEntries(result.Items),
			Total:      result.Total,
			Pagination: query.BuildPaginationResponse(params.Skip, params.Limit, int64(result.Total)),
			Tree:       h.toTree(result.Tree),
			Seq:        params.Seq,
		},
	})
}

// GetOrganizationOptions lists candidate parents
// @Summary Parent picker options
// @Description Full flattened directory; with exclude set, that organization and its subtree are omitted
// @Tags organizations
// @Produce json
// @Param exclude query string false "Organization being edited" format(uuid)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} handlers.ErrorResponse "Invalid exclude ID"
// @Router /organizations/options [get]
func (h *OrganizationHandler) GetOrganizationOptions(ctx *gin.Context) {
	var exclude *uuid.UUID
	if raw := strings.TrimSpace(ctx.Query("exclude")); raw != "" {
		id, ok := parseID(ctx, raw)
		if !ok {
			return
		}
		exclude = &id
	}

	entries, err := h.svc.Options(ctx.Request.Context(), exclude)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.toEntries(entries),
	})
}

// GetOrganization retrieves a single organization by ID
// @Summary Get organization by ID
// @Description Organization with level and direct and rolled-up dependent counts
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Success 200 {object} handlers.SingleOrganizationResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid organization ID format"
// @Failure 404 {object} handlers.ErrorResponse "Organization not found"
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(ctx *gin.Context) {
	id, ok := parseID(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	node, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SingleOrganizationResponse{Success: true, Data: h.toResponse(node)})
}

// CreateOrganization creates a new organization
// @Summary Create organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param X-Operator header string false "Operator recorded as creator"
// @Param organization body handlers.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} handlers.SingleOrganizationResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid request data"
// @Failure 409 {object} handlers.ErrorResponse "Second top-level organization refused"
// @Failure 422 {object} handlers.ErrorResponse "Parent does not exist"
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(ctx *gin.Context) {
	var req CreateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data: " + err.Error(), Code: "validation"})
		return
	}

	result, err := h.svc.Create(ctx.Request.Context(), services.CreateInput{
		Name:     req.Name,
		ParentID: req.ParentID,
		Operator: ctx.GetHeader(OperatorHeader),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, SingleOrganizationResponse{
		Success:  true,
		Data:     h.toResponse(result.Node),
		Warnings: result.Warnings,
	})
}

// UpdateOrganization renames and/or moves an organization
// @Summary Update organization
// @Description Rename and/or reparent. A refused move leaves the organization unchanged.
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param X-Operator header string false "Operator recorded as updater"
// @Param organization body handlers.UpdateOrganizationRequest true "Fields to change"
// @Success 200 {object} handlers.SingleOrganizationResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid request data"
// @Failure 404 {object} handlers.ErrorResponse "Organization not found"
// @Failure 409 {object} handlers.ErrorResponse "Second top-level organization refused"
// @Failure 422 {object} handlers.ErrorResponse "Self parent, cycle or missing parent"
// @Router /organizations/{id} [put]
func (h *OrganizationHandler) UpdateOrganization(ctx *gin.Context) {
	id, ok := parseID(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	var req UpdateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data: " + err.Error(), Code: "validation"})
		return
	}

	result, err := h.svc.Update(ctx.Request.Context(), id, services.UpdateInput{
		Name:        req.Name,
		ParentID:    req.ParentID.Value,
		ClearParent: req.ClearParent || (req.ParentID.Set && req.ParentID.Value == nil),
		Operator:    ctx.GetHeader(OperatorHeader),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SingleOrganizationResponse{
		Success:  true,
		Data:     h.toResponse(result.Node),
		Warnings: result.Warnings,
	})
}

// DeleteOrganization deletes an organization without children or attached records
// @Summary Delete organization
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} handlers.ErrorResponse "Invalid organization ID format"
// @Failure 404 {object} handlers.ErrorResponse "Organization not found"
// @Failure 409 {object} handlers.ErrorResponse "Sub-units or records attached"
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) DeleteOrganization(ctx *gin.Context) {
	id, ok := parseID(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization deleted successfully",
	})
}

// ExportOrganizations writes the flattened directory to object storage
// @Summary Export directory
// @Tags organizations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} handlers.ErrorResponse "Export storage not configured"
// @Router /organizations/export [post]
func (h *OrganizationHandler) ExportOrganizations(ctx *gin.Context) {
	result, err := h.svc.Export(ctx.Request.Context())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"bucket": result.Bucket,
			"key":    result.Key,
			"rows":   result.Rows,
		},
	})
}
