package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"stoneTracker/api"
	"stoneTracker/services/collection"
	"stoneTracker/services/roster"
	"stoneTracker/services/session"
	"stoneTracker/services/stone"
	"stoneTracker/services/user"
	"stoneTracker/utils"
	"stoneTracker/validator"
)

// ensure that we've conformed to the `ServerInterface` with a compile-time check
var _ api.ServerInterface = (*Server)(nil)

type Server struct {
	UserService       user.Service
	CollectionService collection.Service
	SessionService    session.Service
	Roster            *roster.Synchronizer
}

func NewServer(users user.Service, collections collection.Service, sessions session.Service, r *roster.Synchronizer) Server {
	return Server{
		UserService:       users,
		CollectionService: collections,
		SessionService:    sessions,
		Roster:            r,
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrTransport), errors.Is(err, session.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, api.ErrorResponse{Error: err.Error()})
}

// identity returns the caller, answering 401 when there is none.
func (s Server) identity(c *gin.Context) (*session.Identity, bool) {
	identity, ok := validator.FromContext(c)
	if !ok {
		writeError(c, fmt.Errorf("%w: missing identity", session.ErrUnauthorized))
		return nil, false
	}
	return identity, true
}

func (s Server) currentUser(c *gin.Context) (*user.User, bool) {
	identity, ok := s.identity(c)
	if !ok {
		return nil, false
	}
	u, err := s.UserService.GetUser(c.Request.Context(), identity.UserID)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return u, true
}

// pending reports whether the roster has yet to show u's current stones.
func (s Server) pending(u user.User) bool {
	seen, ok := s.Roster.Find(u.ID)
	if !ok || len(seen.Stones) != len(u.Stones) {
		return true
	}
	for i := range u.Stones {
		if seen.Stones[i] != u.Stones[i] {
			return true
		}
	}
	return false
}

func (s Server) GetPing(c *gin.Context) {
	c.JSON(http.StatusOK, api.Pong{Ping: "pong"})
}

func (s Server) ListStones(c *gin.Context) {
	c.JSON(http.StatusOK, api.TransformStones(stone.All()))
}

func (s Server) SignInAnonymous(c *gin.Context) {
	var body api.SignInRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, fmt.Errorf("%w: %v", user.ErrValidation, err))
		return
	}

	identity, err := s.SessionService.SignInAnonymous(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("anonymous sign-in failed")
		writeError(c, err)
		return
	}
	u, err := s.UserService.CreateUser(c.Request.Context(), identity.UserID, user.Profile{
		Name:  utils.FromPointer(body.Name),
		Email: utils.FromPointer(body.Email),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.SignInResponse{
		Token:        identity.Token,
		RefreshToken: utils.NonEmpty(identity.RefreshToken),
		ExpiresIn:    int(identity.ExpiresIn.Seconds()),
		User:         api.TransformUser(*u),
	})
}

func (s Server) SignOut(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}
	if err := s.SessionService.SignOut(c.Request.Context(), identity.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s Server) GetMe(c *gin.Context) {
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.TransformUser(*u))
}

func (s Server) UpdateMe(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}
	var body api.ProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, fmt.Errorf("%w: %v", user.ErrValidation, err))
		return
	}
	u, err := s.UserService.UpdateProfile(c.Request.Context(), identity.UserID, user.Profile{
		Name:  body.Name,
		Email: utils.FromPointer(body.Email),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.TransformUser(*u))
}

func (s Server) GetAvailableStones(c *gin.Context) {
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.TransformStones(collection.AvailableStones(*u)))
}

func (s Server) AddStone(c *gin.Context) {
	var body api.AddStoneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, fmt.Errorf("%w: %v", user.ErrValidation, err))
		return
	}
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	st := stone.Stone{ID: string(body.StoneId), AcquiredFrom: utils.FromPointer(body.AcquiredFrom)}
	updated, err := s.CollectionService.AddStone(c.Request.Context(), st, *u)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.MutationResponse{
		User:    api.TransformUser(*updated),
		Pending: s.pending(*updated),
	})
}

func (s Server) RemoveStone(c *gin.Context, stoneId string) {
	st, ok := stone.Find(stoneId)
	if !ok {
		writeError(c, fmt.Errorf("%w: %q", collection.ErrUnknownStone, stoneId))
		return
	}
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	updated, err := s.CollectionService.RemoveStone(c.Request.Context(), st, *u)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MutationResponse{
		User:    api.TransformUser(*updated),
		Pending: s.pending(*updated),
	})
}

func (s Server) GetMyRank(c *gin.Context) {
	identity, ok := s.identity(c)
	if !ok {
		return
	}
	users := s.Roster.Snapshot().Users
	me := user.User{ID: identity.UserID}
	for _, u := range users {
		if u.ID == identity.UserID {
			me = u
			break
		}
	}
	c.JSON(http.StatusOK, api.TransformRank(me, users))
}

func (s Server) GetRoster(c *gin.Context) {
	c.JSON(http.StatusOK, api.TransformSnapshot(s.Roster.Snapshot()))
}

func (s Server) GetCompleteCollections(c *gin.Context) {
	complete := collection.UsersWithCompleteCollection(s.Roster.Snapshot().Users)
	c.JSON(http.StatusOK, api.TransformUsers(complete))
}

func (s Server) GetUser(c *gin.Context, userId string) {
	u, err := s.UserService.GetUser(c.Request.Context(), userId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.TransformUser(*u))
}
