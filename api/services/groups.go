package services

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	identity "github.com/groupmail/groupmail-services/internal/services"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
)

// ListGroupsService returns every group.
func ListGroupsService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	groups, err := svc.Identity.ListGroups(r.Context())
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}

	WriteResponse(w, http.StatusOK, groups)
}

// CreateGroupService creates a group with the caller as its admin.
func CreateGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, err := callerClaims(r)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	var req models.GroupRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	group, err := svc.Identity.CreateGroup(r.Context(), identity.CreateGroupInput{
		CreatorEmail: claims.CallerEmail(),
		Name:         req.Name,
		Code:         req.Code,
	})
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("group", group.Name).Str("creator", claims.CallerEmail()).Msg("Group created")
	location, _ := url.JoinPath(r.URL.Path, group.Name)
	WriteResponse(w, http.StatusCreated, group, location)
}

// GetGroupService returns a group and its members to one of its admins.
func GetGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	group, err := requireGroupAdmin(svc, r, mux.Vars(r)["group"])
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	WriteResponse(w, http.StatusOK, group)
}

// DeleteGroupService removes a group and its mailing list.
func DeleteGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	name := mux.Vars(r)["group"]

	if _, err := requireGroupAdmin(svc, r, name); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	if err := svc.Identity.DeleteGroup(r.Context(), name); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("group", name).Msg("Group deleted")
	WriteResponse(w, http.StatusNoContent, nil)
}

// AddMembersService subscribes a batch of emails to a group.
func AddMembersService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	name := mux.Vars(r)["group"]

	if _, err := requireGroupAdmin(svc, r, name); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	var req models.MembersRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	added, err := svc.Identity.AddMembers(r.Context(), name, requestEmails(req))
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("group", name).Int("added", len(added)).Msg("Members added")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: nonNil(added)})
}

// RemoveMembersService unsubscribes a batch of emails from a group.
func RemoveMembersService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	name := mux.Vars(r)["group"]

	if _, err := requireGroupAdmin(svc, r, name); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	var req models.MembersRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	removed, err := svc.Identity.RemoveMembers(r.Context(), name, requestEmails(req))
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	logger.Info().Str("group", name).Int("removed", len(removed)).Msg("Members removed")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: nonNil(removed)})
}

// AddAdminService promotes a member of a group to admin.
func AddAdminService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	name := mux.Vars(r)["group"]

	if _, err := requireGroupAdmin(svc, r, name); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	var req models.AdminRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	if err := svc.Identity.AddAdmin(r.Context(), name, req.Email); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	WriteResponse(w, http.StatusNoContent, nil)
}

// JoinGroupService adds an email to a group given the group's code. The
// email defaults to the caller's; joining with any other address needs
// admin rights on the group.
func JoinGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	claims, err := callerClaims(r)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	var req models.JoinRequest
	if err := decode(r, &req); err != nil {
		HandleErrResponse(w, logger, err)
		return
	}
	if req.Email == "" {
		req.Email = claims.CallerEmail()
	}

	owned, err := callerOwns(svc, r, claims, req.Email)
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}
	if !owned {
		if _, err := requireGroupAdmin(svc, r, req.Name); err != nil {
			HandleErrResponse(w, logger, err)
			return
		}
	}

	group, err := svc.Identity.JoinGroup(r.Context(), identity.JoinInput{
		Name:  req.Name,
		Code:  req.Code,
		Email: req.Email,
	})
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	WriteResponse(w, http.StatusOK, group)
}

func requestEmails(req models.MembersRequest) []string {
	emails := append([]string{}, req.Emails...)
	return append(emails, identity.ParseEmailList(req.Raw)...)
}

func nonNil(emails []string) []string {
	if emails == nil {
		return []string{}
	}
	return emails
}
