// Package httpapi exposes the exhibit and invitation services over HTTP.
// Handlers stay thin: multipart/JSON decoding in, service call, JSON envelope
// out. All domain decisions live in the services.
package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nick102030/Jolvre-BE/internal/logging"
	"github.com/nick102030/Jolvre-BE/internal/server/models"
	"github.com/nick102030/Jolvre-BE/internal/server/services"
)

// ExhibitService is the slice of the exhibit aggregate the HTTP layer needs.
type ExhibitService interface {
	Create(ctx context.Context, ownerID string, req services.CreateExhibitRequest) (string, error)
	Update(ctx context.Context, exhibitID, actorID string, req services.UpdateExhibitRequest) error
	Get(ctx context.Context, exhibitID string) (*services.ExhibitView, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Exhibit, error)
	Delete(ctx context.Context, exhibitID, actorID string) error
}

// InviteService is the slice of the invitation lifecycle the HTTP layer needs.
type InviteService interface {
	CreateGroup(ctx context.Context, creatorID, name string) (string, error)
	Invite(ctx context.Context, inviterID, inviteeID, groupID string) (string, error)
	Respond(ctx context.Context, actorID, inviteID, decision string) error
	ListInvites(ctx context.Context, userID string) ([]*models.GroupInviteView, error)
	Members(ctx context.Context, groupID string) ([]string, error)
}

// Server is the public HTTP endpoint.
type Server struct {
	app       *fiber.App
	exhibits  ExhibitService
	invites   InviteService
	secretKey []byte
	logger    logging.Logger
}

func NewServer(exhibits ExhibitService, invites InviteService, secretKey []byte, logger logging.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			BodyLimit:             32 * 1024 * 1024, // multipart image batches
			DisableStartupMessage: true,
		}),
		exhibits:  exhibits,
		invites:   invites,
		secretKey: secretKey,
		logger:    logger.With("module", "httpapi"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/v1")
	authed := s.bearerAuth()

	exhibit := api.Group("/exhibit")
	exhibit.Get("/:id", s.getExhibit) // public read
	exhibit.Get("/user/:userId", s.listExhibitsByUser)
	exhibit.Post("/", authed, s.createExhibit)
	exhibit.Patch("/:id", authed, s.updateExhibit)
	exhibit.Delete("/:id", authed, s.deleteExhibit)

	group := api.Group("/group", authed)
	group.Post("/", s.createGroup)
	group.Post("/:groupId/invite", s.createInvite)
	group.Get("/:groupId/members", s.listMembers)

	invite := api.Group("/invite", authed)
	invite.Get("/", s.listInvites)
	invite.Post("/:inviteId/respond", s.respondInvite)
}

// Run blocks serving on addr until Shutdown is called.
func (s *Server) Run(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
