package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/internal/events"
	"github.com/groupmail/groupmail-services/models"
)

// CreateGroup creates a group and its mailing list, with the creator as
// member and admin. The list is created before anything is written, and
// removed again if the local write fails.
func (s *Service) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	in = in.Normalize()
	if err := ValidateCreateGroup(in); err != nil {
		return nil, err
	}

	var (
		group       *models.Group
		listCreated bool
	)
	err := s.run(ctx, "create_group", func(o *op) error {
		existing, err := o.q.GetGroupByName(ctx, in.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			code := ""
			if existing.Code == in.Code {
				code = in.Code
			}
			return groupExistsError(in.Name, code)
		}

		creator, err := s.getOrCreate(o, AccountInput{Email: in.CreatorEmail}, true)
		if err != nil {
			return err
		}

		group = &models.Group{ID: uuid.New(), Name: in.Name, Code: in.Code}
		if err := s.syncNewList(ctx, group, in.CreatorEmail); err != nil {
			return err
		}
		listCreated = s.Options.ModifyMailingLists

		if err := o.q.InsertGroup(ctx, group); err != nil {
			return err
		}
		if _, err := o.q.AddGroupMember(ctx, group.ID, in.CreatorEmail, true); err != nil {
			return err
		}

		ev := events.NewGroupEvent(events.GroupCreated, group.Name, []string{in.CreatorEmail})
		ev.AccountID = creator.ID.String()
		o.emit(ev)
		return nil
	})
	if err != nil {
		if listCreated {
			if rmErr := s.syncRmList(ctx, group); rmErr != nil {
				s.logger().Error().Err(rmErr).Str("list", group.ListName()).Msg("Failed to remove mailing list after aborted group creation")
			}
		}
		return nil, err
	}
	return group, nil
}

// AddMembers subscribes emails to the group, creating accounts for unknown
// addresses. Emails that are already members are left alone. It returns
// the emails that were newly added.
func (s *Service) AddMembers(ctx context.Context, groupName string, emails []string) ([]string, error) {
	emails = normalizeEmails(emails)
	for _, email := range emails {
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	var added []string
	err := s.run(ctx, "add_members", func(o *op) error {
		group, err := s.loadGroup(o, groupName)
		if err != nil {
			return err
		}
		added, err = s.addMembers(o, group, emails)
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveMembers unsubscribes emails from the group, dropping any admin
// role. Emails that are not members are ignored. It returns the emails
// that were removed.
func (s *Service) RemoveMembers(ctx context.Context, groupName string, emails []string) ([]string, error) {
	emails = normalizeEmails(emails)

	var removed []string
	err := s.run(ctx, "remove_members", func(o *op) error {
		group, err := s.loadGroup(o, groupName)
		if err != nil {
			return err
		}

		removed = nil
		for _, email := range emails {
			ok, err := o.q.RemoveGroupMember(ctx, group.ID, email)
			if err != nil {
				return err
			}
			if ok {
				removed = append(removed, email)
			}
		}

		if err := s.syncRemoveMembers(ctx, group, removed); err != nil {
			return err
		}
		if len(removed) > 0 {
			o.emit(events.NewGroupEvent(events.MembersRemoved, group.Name, removed))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// JoinGroup adds an email to the group named in.Name when in.Code matches.
// Joining a group the email already belongs to succeeds without change.
func (s *Service) JoinGroup(ctx context.Context, in JoinInput) (*models.Group, error) {
	in = in.Normalize()
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	var group *models.Group
	err := s.run(ctx, "join_group", func(o *op) error {
		var err error
		if group, err = s.loadGroup(o, in.Name); err != nil {
			return err
		}
		if group.Code != in.Code {
			return codeInvalidError(in.Name, in.Code)
		}
		_, err = s.addMembers(o, group, []string{in.Email})
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AddAdmin grants the admin role to a member of the group.
func (s *Service) AddAdmin(ctx context.Context, groupName, email string) error {
	email = AccountInput{Email: email}.Normalize().Email
	if err := ValidateEmail(email); err != nil {
		return err
	}

	return s.run(ctx, "add_admin", func(o *op) error {
		group, err := s.loadGroup(o, groupName)
		if err != nil {
			return err
		}
		m, err := o.q.GetMembership(ctx, group.ID, email)
		if err != nil {
			return err
		}
		if m == nil {
			return notAMemberError(group.Name, email)
		}
		if m.IsAdmin {
			return nil
		}
		return o.q.SetGroupAdmin(ctx, group.ID, email, true)
	})
}

// DeleteGroup removes the mailing list and then the group with all its
// memberships.
func (s *Service) DeleteGroup(ctx context.Context, groupName string) error {
	return s.run(ctx, "delete_group", func(o *op) error {
		group, err := s.loadGroup(o, groupName)
		if err != nil {
			return err
		}
		if err := s.syncRmList(ctx, group); err != nil {
			return err
		}
		if err := o.q.DeleteGroup(ctx, group.ID); err != nil {
			return err
		}
		o.emit(events.NewGroupEvent(events.GroupDeleted, group.Name, nil))
		return nil
	})
}

// GetGroup retrieves a group with its members.
func (s *Service) GetGroup(ctx context.Context, groupName string) (*models.GroupResponse, error) {
	var resp *models.GroupResponse
	err := s.view(ctx, func(o *op) error {
		group, err := s.loadGroup(o, groupName)
		if err != nil {
			return err
		}
		members, err := o.q.ListGroupMembers(ctx, group.ID)
		if err != nil {
			return err
		}
		resp = &models.GroupResponse{Group: *group, Members: members}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListGroups retrieves every group.
func (s *Service) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.view(ctx, func(o *op) error {
		var err error
		groups, err = o.q.ListGroups(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ResolveListName maps the external listname a sender addressed, which is
// the group name, to the internal listname of the mailing list. The sender
// must own an email that belongs to the group.
func (s *Service) ResolveListName(ctx context.Context, sender, externalName string) (string, error) {
	sender = AccountInput{Email: sender}.Normalize().Email
	if err := ValidateEmail(sender); err != nil {
		return "", err
	}

	var listName string
	err := s.view(ctx, func(o *op) error {
		group, err := s.loadGroup(o, externalName)
		if err != nil {
			return err
		}

		candidates := []string{sender}
		account, err := o.q.GetAccountByEmail(ctx, sender)
		if err != nil {
			return err
		}
		if account != nil {
			if candidates, err = o.q.ListAccountEmails(ctx, account.ID); err != nil {
				return err
			}
		}

		for _, email := range candidates {
			m, err := o.q.GetMembership(ctx, group.ID, email)
			if err != nil {
				return err
			}
			if m != nil {
				listName = group.ListName()
				return nil
			}
		}
		return notAMemberError(group.Name, sender)
	})
	if err != nil {
		return "", err
	}
	return listName, nil
}

func (s *Service) loadGroup(o *op, name string) (*models.Group, error) {
	group, err := o.q.GetGroupByName(o.ctx, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, groupNotFoundError(name)
	}
	return group, nil
}

// addMembers resolves an account for every email, records the new
// memberships and syncs them to the mailing list in one call.
func (s *Service) addMembers(o *op, group *models.Group, emails []string) ([]string, error) {
	var added []string
	for _, email := range emails {
		if _, err := s.getOrCreate(o, AccountInput{Email: email}, true); err != nil {
			return nil, err
		}
		ok, err := o.q.AddGroupMember(o.ctx, group.ID, email, false)
		if err != nil {
			return nil, err
		}
		if ok {
			added = append(added, email)
		}
	}

	if err := s.syncAddMembers(o.ctx, group, added); err != nil {
		return nil, err
	}
	if len(added) > 0 {
		o.emit(events.NewGroupEvent(events.MembersAdded, group.Name, added))
	}
	return added, nil
}
