package contacts

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/osavchuk/contacts-api/internal/adapters/transport/http/dto"
	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/repo"
)

const birthdayLayout = "2006-01-02"

const maxPageSize = 1000

type Service interface {
	Create(ctx context.Context, ownerID uint, in dto.ContactCreateDTO) (model.Contact, error)
	Get(ctx context.Context, ownerID, contactID uint) (model.Contact, error)
	List(ctx context.Context, ownerID uint, skip, limit int, filter repo.ContactFilter) ([]model.Contact, error)
	Update(ctx context.Context, ownerID, contactID uint, in dto.ContactUpdateDTO) (model.Contact, error)
	Delete(ctx context.Context, ownerID, contactID uint) error
	UpcomingBirthdays(ctx context.Context, ownerID uint, days int) ([]model.Contact, error)
}

type contactService struct {
	contacts repo.ContactRepo
	v        *validator.Validate
	today    func() time.Time
}

func New(cr repo.ContactRepo, v *validator.Validate) Service {
	return &contactService{contacts: cr, v: v, today: time.Now}
}

func (s *contactService) Create(ctx context.Context, ownerID uint, in dto.ContactCreateDTO) (model.Contact, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Contact{}, customErrors.NewInvalidArgument(err.Error())
	}
	birthday, err := time.Parse(birthdayLayout, in.Birthday)
	if err != nil {
		return model.Contact{}, customErrors.NewInvalidArgument("bad birthday format")
	}

	c := model.Contact{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Birthday:  birthday,
		Extra:     in.Extra,
		OwnerID:   ownerID,
	}
	created, err := s.contacts.Create(ctx, c)
	if err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "CreateContact")
	}
	return created, nil
}

func (s *contactService) Get(ctx context.Context, ownerID, contactID uint) (model.Contact, error) {
	c, err := s.contacts.Get(ctx, ownerID, contactID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Contact{}, customErrors.ErrNotFound
	case err != nil:
		return model.Contact{}, customErrors.WrapInternal(err, "GetContact")
	}
	return c, nil
}

func (s *contactService) List(ctx context.Context, ownerID uint, skip, limit int, filter repo.ContactFilter) ([]model.Contact, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	out, err := s.contacts.List(ctx, ownerID, skip, limit, filter)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListContacts")
	}
	return out, nil
}

func (s *contactService) Update(ctx context.Context, ownerID, contactID uint, in dto.ContactUpdateDTO) (model.Contact, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Contact{}, customErrors.NewInvalidArgument(err.Error())
	}

	c, err := s.Get(ctx, ownerID, contactID)
	if err != nil {
		return model.Contact{}, err
	}

	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Birthday != nil {
		birthday, err := time.Parse(birthdayLayout, *in.Birthday)
		if err != nil {
			return model.Contact{}, customErrors.NewInvalidArgument("bad birthday format")
		}
		c.Birthday = birthday
	}
	if in.Extra != nil {
		c.Extra = *in.Extra
	}

	updated, err := s.contacts.Update(ctx, c)
	if err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "UpdateContact")
	}
	return updated, nil
}

func (s *contactService) Delete(ctx context.Context, ownerID, contactID uint) error {
	err := s.contacts.Delete(ctx, ownerID, contactID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "DeleteContact")
	}
	return nil
}

// UpcomingBirthdays returns contacts whose next birthday falls inside
// [today, today+days]. Feb 29 birthdays count as Feb 28 in non-leap years.
func (s *contactService) UpcomingBirthdays(ctx context.Context, ownerID uint, days int) ([]model.Contact, error) {
	if days < 1 {
		days = 7
	}

	all, err := s.contacts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "UpcomingBirthdays")
	}

	today := truncateToDay(s.today())
	end := today.AddDate(0, 0, days)

	var out []model.Contact
	for _, c := range all {
		next := nextBirthday(c.Birthday, today)
		if !next.Before(today) && !next.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextBirthday(birthday, today time.Time) time.Time {
	next := birthdayInYear(birthday, today.Year())
	if next.Before(today) {
		next = birthdayInYear(birthday, today.Year()+1)
	}
	return next
}

func birthdayInYear(birthday time.Time, year int) time.Time {
	month, day := birthday.Month(), birthday.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
