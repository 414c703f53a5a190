package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"battlebrain-service/internal/domain"
)

// AdminRepository persists admin accounts as one document keyed by folded email.
type AdminRepository interface {
	LoadAdmins(ctx context.Context) (map[string]domain.Admin, error)
	SaveAdmins(ctx context.Context, admins map[string]domain.Admin) error
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AdminService covers the admin account use cases. Accounts are self-asserted
// records, not a security boundary; sign-in is a stored-field comparison.
type AdminService struct {
	admins   AdminRepository
	students StudentRepository
}

func NewAdminService(admins AdminRepository, students StudentRepository) *AdminService {
	return &AdminService{admins: admins, students: students}
}

// Register creates a new admin account, verified at creation. Registering an
// email that already exists fails with ErrAdminExists.
func (s *AdminService) Register(ctx context.Context, name, email, password string) (domain.Admin, error) {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return domain.Admin{}, domain.ErrInvalidEmail
	}
	admins, err := s.admins.LoadAdmins(ctx)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("load admins: %w", err)
	}
	folded := domain.FoldEmail(email)
	if _, ok := admins[folded]; ok {
		return domain.Admin{}, domain.ErrAdminExists
	}
	admin := domain.Admin{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
		Verified: true,
	}
	if admins == nil {
		admins = make(map[string]domain.Admin)
	}
	admins[folded] = admin
	if err := s.admins.SaveAdmins(ctx, admins); err != nil {
		return domain.Admin{}, fmt.Errorf("save admins: %w", err)
	}
	return admin, nil
}

// SignIn checks name, case-folded email, and password against the stored record.
func (s *AdminService) SignIn(ctx context.Context, name, email, password string) (domain.Admin, error) {
	admins, err := s.admins.LoadAdmins(ctx)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("load admins: %w", err)
	}
	admin, ok := admins[domain.FoldEmail(email)]
	if !ok {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	if strings.TrimSpace(name) != strings.TrimSpace(admin.Name) || password != admin.Password {
		return domain.Admin{}, domain.ErrInvalidCredentials
	}
	return admin, nil
}

// RemoveStudent deletes a student record owned by this admin (identity match
// plus owning admin email match).
func (s *AdminService) RemoveStudent(ctx context.Context, adminEmail string, key domain.StudentKey) error {
	students, err := s.students.LoadStudents(ctx)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	folded := domain.FoldEmail(adminEmail)
	kept := students[:0]
	removed := false
	for _, st := range students {
		if key.Matches(st) && domain.FoldEmail(st.AdminEmail) == folded {
			removed = true
			continue
		}
		kept = append(kept, st)
	}
	if !removed {
		return domain.ErrStudentNotFound
	}
	if err := s.students.SaveStudents(ctx, kept); err != nil {
		return fmt.Errorf("save students: %w", err)
	}
	return nil
}
