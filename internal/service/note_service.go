package service

import (
	"context"

	"collectify-be/internal/dto"
	"collectify-be/internal/entity"
	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/cipher"
	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	msgNoteNotFound    = "Note not found"
	msgGroupNotFound   = "Group not found"
	msgNotGroupMember  = "You are not a member of this group!"
	msgNotNoteOwner    = "You are not the owner of this note!"
	msgNoNoteAccess    = "You do not have access to this note!"
	msgTitleRequired   = "Title is required"
	decryptConcurrency = 8
)

type INoteService interface {
	CreateNote(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.SimpleNote, error)
	GetOwnedNotes(ctx context.Context, userId uuid.UUID) ([]*dto.SimpleNote, error)
	GetNote(ctx context.Context, id, userId uuid.UUID) (*dto.SimpleNote, error)
	GetNotesByGroup(ctx context.Context, groupId, userId uuid.UUID) ([]*dto.SimpleNote, error)
	UpdateNote(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.SimpleNote, error)
	DeleteNote(ctx context.Context, userId, id uuid.UUID) error
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	cipher     *cipher.Cipher
	publisher  events.Publisher
	log        logger.ILogger
}

func NewNoteService(uowFactory unitofwork.RepositoryFactory, c *cipher.Cipher, publisher events.Publisher, log logger.ILogger) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		cipher:     c,
		publisher:  publisher,
		log:        log,
	}
}

func isMember(ctx context.Context, uow unitofwork.UnitOfWork, groupId, userId uuid.UUID) (bool, error) {
	n, err := uow.GroupMemberRepository().Count(ctx,
		specification.ByGroupID{GroupID: groupId},
		specification.ByMemberID{MemberID: userId},
	)
	if err != nil {
		return false, apperror.Internal("failed to check membership", err)
	}
	return n > 0, nil
}

func findUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	return user, nil
}

func findGroup(ctx context.Context, uow unitofwork.UnitOfWork, groupId uuid.UUID) (*entity.Group, error) {
	group, err := uow.GroupRepository().FindOne(ctx, specification.ByID{ID: groupId})
	if err != nil {
		return nil, apperror.Internal("failed to look up group", err)
	}
	if group == nil {
		return nil, apperror.NotFound(msgGroupNotFound)
	}
	return group, nil
}

func findNote(ctx context.Context, uow unitofwork.UnitOfWork, noteId uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return nil, apperror.Internal("failed to look up note", err)
	}
	if note == nil {
		return nil, apperror.NotFound(msgNoteNotFound)
	}
	return note, nil
}

func (s *noteService) decrypt(note *entity.Note) (*dto.SimpleNote, error) {
	title, err := s.cipher.DecryptString(note.Title)
	if err != nil {
		return nil, apperror.Internal("failed to decrypt note title", err)
	}
	content, err := s.cipher.DecryptString(note.Content)
	if err != nil {
		return nil, apperror.Internal("failed to decrypt note content", err)
	}
	return &dto.SimpleNote{
		Id:        note.Id,
		Title:     title,
		Content:   content,
		GroupId:   note.GroupId,
		CreatorId: note.CreatorId,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

// decryptAll fans out per note and keeps the input order.
func (s *noteService) decryptAll(ctx context.Context, notes []*entity.Note) ([]*dto.SimpleNote, error) {
	out := make([]*dto.SimpleNote, len(notes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(decryptConcurrency)
	for i, note := range notes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			view, err := s.decrypt(note)
			if err != nil {
				return err
			}
			out[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNote requires a title; empty content is stored as an encrypted empty string.
func (s *noteService) CreateNote(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.SimpleNote, error) {
	if req.Title == "" {
		return nil, apperror.BadRequest(msgTitleRequired)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	if req.GroupId != nil {
		if _, err := findGroup(ctx, uow, *req.GroupId); err != nil {
			return nil, err
		}
		member, err := isMember(ctx, uow, *req.GroupId, userId)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperror.Forbidden(msgNotGroupMember)
		}
	}

	encTitle, err := s.cipher.EncryptString(req.Title)
	if err != nil {
		return nil, apperror.Internal("failed to encrypt note title", err)
	}
	encContent, err := s.cipher.EncryptString(req.Content)
	if err != nil {
		return nil, apperror.Internal("failed to encrypt note content", err)
	}

	creatorId := userId
	note := &entity.Note{
		Id:        uuid.New(),
		Title:     encTitle,
		Content:   encContent,
		CreatorId: &creatorId,
		GroupId:   req.GroupId,
	}
	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return nil, apperror.Internal("failed to create note", err)
	}

	s.publishNoteEvent(ctx, events.NoteCreated, note, userId)

	return &dto.SimpleNote{
		Id:        note.Id,
		Title:     req.Title,
		Content:   req.Content,
		GroupId:   note.GroupId,
		CreatorId: note.CreatorId,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

func (s *noteService) GetOwnedNotes(ctx context.Context, userId uuid.UUID) ([]*dto.SimpleNote, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByCreatorID{CreatorID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("failed to load notes", err)
	}
	return s.decryptAll(ctx, notes)
}

func (s *noteService) GetNote(ctx context.Context, id, userId uuid.UUID) (*dto.SimpleNote, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := findNote(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	if !note.IsCreatedBy(userId) {
		allowed := false
		if !note.IsPrivate() {
			if allowed, err = isMember(ctx, uow, *note.GroupId, userId); err != nil {
				return nil, err
			}
		}
		if !allowed {
			return nil, apperror.Forbidden(msgNoNoteAccess)
		}
	}

	return s.decrypt(note)
}

func (s *noteService) GetNotesByGroup(ctx context.Context, groupId, userId uuid.UUID) ([]*dto.SimpleNote, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findGroup(ctx, uow, groupId); err != nil {
		return nil, err
	}
	member, err := isMember(ctx, uow, groupId, userId)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperror.Forbidden(msgNotGroupMember)
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByGroupID{GroupID: groupId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("failed to load notes", err)
	}
	return s.decryptAll(ctx, notes)
}

// canModify keeps the collaborative rule: only private notes are restricted
// to their creator, group notes are open to any caller.
func canModify(note *entity.Note, userId uuid.UUID) bool {
	return note.IsCreatedBy(userId) || !note.IsPrivate()
}

func (s *noteService) UpdateNote(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.SimpleNote, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := findNote(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}
	if !canModify(note, userId) {
		return nil, apperror.Forbidden(msgNotNoteOwner)
	}

	if req.Title != nil {
		if note.Title, err = s.cipher.EncryptString(*req.Title); err != nil {
			return nil, apperror.Internal("failed to encrypt note title", err)
		}
	}
	if req.Content != nil {
		if note.Content, err = s.cipher.EncryptString(*req.Content); err != nil {
			return nil, apperror.Internal("failed to encrypt note content", err)
		}
	}

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, apperror.Internal("failed to update note", err)
	}

	s.publishNoteEvent(ctx, events.NoteUpdated, note, userId)

	return s.decrypt(note)
}

func (s *noteService) DeleteNote(ctx context.Context, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := findNote(ctx, uow, id)
	if err != nil {
		return err
	}
	if !canModify(note, userId) {
		return apperror.Forbidden(msgNotNoteOwner)
	}

	if err := uow.NoteRepository().Delete(ctx, note.Id); err != nil {
		return apperror.Internal("failed to delete note", err)
	}

	s.publishNoteEvent(ctx, events.NoteDeleted, note, userId)
	return nil
}

func (s *noteService) publishNoteEvent(ctx context.Context, eventType string, note *entity.Note, actorId uuid.UUID) {
	if note.IsPrivate() {
		return
	}
	publishEvent(ctx, s.publisher, s.log, events.NewGroupEvent(eventType, note.GroupId.String(), actorId.String(),
		map[string]interface{}{events.KeyNoteID: note.Id.String()}))
}
