package httpapi

import (
	"net/http"

	"github.com/aclgate/aclgate/attachment"
	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/schema"
	"github.com/aclgate/aclgate/store"
	"github.com/aclgate/aclgate/writepath"
	"github.com/go-chi/chi/v5"
)

// Server holds the collaborators every handler needs: the Schema
// Registry, the aggregation Executor, the Write Path gates, the
// attachment Processor, and the permission lookup behind Basic auth.
type Server struct {
	Registry    *schema.Registry
	Executor    store.Executor
	Permissions store.PermissionLookup
	Gates       *writepath.Gates
	Attachments *attachment.Processor
	Log         gwerrors.Logger
}

// NewServer constructs a Server. attachments may be a disabled Processor
// (see attachment.NewProcessor) when the side-channel is off.
func NewServer(reg *schema.Registry, exec store.Executor, perms store.PermissionLookup, attachments *attachment.Processor, log gwerrors.Logger) *Server {
	if log == nil {
		log = gwerrors.NoopLogger()
	}
	return &Server{
		Registry:    reg,
		Executor:    exec,
		Permissions: perms,
		Gates:       writepath.NewGates(reg, exec, log),
		Attachments: attachments,
		Log:         log,
	}
}

// RouterOption mutates a chi.Router before routes are mounted, mirroring
// the codegen-emitted RouterOption type (generator/server_gen_shared.go's
// chi target) for attaching extra global middleware.
type RouterOption func(chi.Router)

// NewRouter builds a chi.Router exposing GET /{R}, POST /{R}_write,
// PATCH /{R}_write/{oid}, and DELETE /{R}_write/{oid} for every resource
// in resources.
func NewRouter(srv *Server, resources []string, opts ...RouterOption) chi.Router {
	r := chi.NewRouter()
	r.Use(basicAuthMiddleware(srv))
	for _, opt := range opts {
		opt(r)
	}
	for _, resource := range resources {
		resource := resource
		r.Get("/"+resource, srv.handleRead(resource))
		r.Post("/"+resource+"_write", srv.handleCreate(resource))
		r.Patch("/"+resource+"_write/{oid}", srv.handlePatch(resource))
		r.Delete("/"+resource+"_write/{oid}", srv.handleDelete(resource))
	}
	return r
}

func oidParam(r *http.Request) string {
	return chi.URLParam(r, "oid")
}
