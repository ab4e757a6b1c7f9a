package handlers

import (
	"net/http"

	"github.com/groupmail/groupmail-services/api/services"
)

// @Summary List groups
// @Tags groups
// @Produce json
// @Success 200 {array} models.Group
// @Failure 500 {object} models.Response
// @Router /groups [get]
func ListGroups(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.ListGroupsService(svc, w, r)
	}
}

// @Summary Create a group
// @Description Creates a group and its mailing list. The caller becomes its first admin.
// @Tags groups
// @Accept json
// @Produce json
// @Param group body models.GroupRequest true "Group name and join code"
// @Success 201 {object} models.Group
// @Failure 400 {object} models.Response
// @Failure 409 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /groups [post]
func CreateGroup(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.CreateGroupService(svc, w, r)
	}
}

// @Summary Get a group
// @Description Returns a group and its members. Group admins only.
// @Tags groups
// @Produce json
// @Param group path string true "Group name" example(bookclub)
// @Success 200 {object} models.GroupResponse
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /groups/{group} [get]
func GetGroup(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.GetGroupService(svc, w, r)
	}
}

// @Summary Delete a group
// @Tags groups
// @Param group path string true "Group name" example(bookclub)
// @Success 204
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /groups/{group} [delete]
func DeleteGroup(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.DeleteGroupService(svc, w, r)
	}
}

// @Summary Add members to a group
// @Description Emails may be given as a list or as free text separated by commas, spaces or newlines.
// @Tags groups
// @Accept json
// @Produce json
// @Param group path string true "Group name" example(bookclub)
// @Param members body models.MembersRequest true "Emails to add"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /groups/{group}/members [post]
func AddMembers(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.AddMembersService(svc, w, r)
	}
}

// @Summary Remove members from a group
// @Tags groups
// @Accept json
// @Produce json
// @Param group path string true "Group name" example(bookclub)
// @Param members body models.MembersRequest true "Emails to remove"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /groups/{group}/members/remove [post]
func RemoveMembers(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.RemoveMembersService(svc, w, r)
	}
}

// @Summary Make a member an admin
// @Tags groups
// @Accept json
// @Param group path string true "Group name" example(bookclub)
// @Param admin body models.AdminRequest true "Member email"
// @Success 204
// @Failure 403 {object} models.Response
// @Failure 409 {object} models.Response
// @Router /groups/{group}/admins [post]
func AddAdmin(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.AddAdminService(svc, w, r)
	}
}

// @Summary Join a group
// @Description Joins a group with its code. The email defaults to the caller's; joining another address needs admin rights on the group.
// @Tags groups
// @Accept json
// @Produce json
// @Param join body models.JoinRequest true "Group name, code and optional email"
// @Success 200 {object} models.Group
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /groups/join [post]
func JoinGroup(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.JoinGroupService(svc, w, r)
	}
}
