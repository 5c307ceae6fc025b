package admin

import (
	"context"
	"errors"
	"io"
	"strings"
)

// DefaultTemplate is the page template name.
const DefaultTemplate = "dashboard"

// DefaultBasePath is where transports mount the dashboard.
const DefaultBasePath = "/admin"

type viewResolver interface {
	ResolveView(ctx context.Context, viewer ViewerContext) (View, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  viewResolver
	Renderer Renderer
	Template string
	BasePath string
}

// Controller turns resolved views into template payloads and HTML.
type Controller struct {
	service  viewResolver
	renderer Renderer
	template string
	basePath string
}

// NewController builds a controller with defaults for template and base path.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	opts.BasePath = strings.TrimRight(opts.BasePath, "/")
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		basePath: opts.BasePath,
	}
}

// BasePath returns the mount point used for links and form actions.
func (c *Controller) BasePath() string {
	return c.basePath
}

// PageOptions carries per-request page decorations.
type PageOptions struct {
	CSRFToken   string
	CSRFField   string
	Alert       string
	AlertFields []string
	Notice      string
	// Form overrides the stored draft, e.g. to echo a rejected submission.
	Form *Draft
}

// View resolves the viewer's page state.
func (c *Controller) View(ctx context.Context, viewer ViewerContext) (View, error) {
	if c.service == nil {
		return View{}, errors.New("admin: controller service not configured")
	}
	return c.service.ResolveView(ctx, viewer)
}

// RenderTemplate resolves the view and renders the page into out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, page PageOptions, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("admin: controller renderer not configured")
	}
	view, err := c.View(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, c.Payload(view, page), out)
	return err
}

// Payload builds the template data for view.
func (c *Controller) Payload(view View, page PageOptions) map[string]any {
	nav := make([]map[string]any, 0, len(view.Navigation))
	for _, item := range view.Navigation {
		nav = append(nav, map[string]any{
			"panel":  string(item.Panel),
			"label":  item.Label,
			"active": item.Active,
			"href":   c.basePath + "/dashboard?panel=" + string(item.Panel),
			"action": c.basePath + "/panels/" + string(item.Panel),
		})
	}

	panel := PanelData{}
	for k, v := range view.Panel {
		panel[k] = v
	}
	if page.Form != nil {
		if form, ok := panel["form"].(map[string]any); ok {
			copied := make(map[string]any, len(form))
			for k, v := range form {
				copied[k] = v
			}
			copied["draft"] = map[string]any{
				"title":    page.Form.Title,
				"author":   page.Form.Author,
				"category": page.Form.Category,
				"image":    page.Form.Image,
			}
			panel["form"] = copied
		}
	}

	csrfField := page.CSRFField
	if csrfField == "" {
		csrfField = "csrf_token"
	}
	return map[string]any{
		"base_path":    c.basePath,
		"title":        view.Title,
		"active_panel": string(view.ActivePanel),
		"nav":          nav,
		"panel":        panel,
		"alert":        page.Alert,
		"alert_fields": page.AlertFields,
		"notice":       page.Notice,
		"csrf_token":   page.CSRFToken,
		"csrf_field":   csrfField,
		"placeholder":  DefaultPlaceholderImage,
	}
}
