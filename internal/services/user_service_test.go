package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bukukas/internal/models"
	"bukukas/internal/policy"
	"bukukas/internal/storage"
	"bukukas/internal/testutil"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestUserService(t *testing.T, db *gorm.DB) (UserServicer, string) {
	t.Helper()
	root := t.TempDir()
	return NewUserService(db, storage.NewLocalStore(root), 2<<20), root
}

func pngUpload() *Upload {
	return &Upload{Filename: "avatar.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)}
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		created := testutil.CreateTestUserWithEmail(t, db, "login@example.com", "Login", models.RoleFinance)
		user, err := svc.AttemptLogin("Login@Example.com", testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		testutil.CreateTestUserWithEmail(t, db, "wrong@example.com", "Wrong", models.RoleUser)
		_, err := svc.AttemptLogin("wrong@example.com", "not-the-password")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		_, err := svc.AttemptLogin("nobody@example.com", testutil.TestPassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestRevokeTokens(t *testing.T) {
	t.Run("bumps_token_version", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		user := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, svc.RevokeTokens(user.ID))
		testutil.AssertNoError(t, svc.RevokeTokens(user.ID))

		reloaded, err := svc.GetUserByID(user.ID)
		testutil.AssertNoError(t, err)
		if reloaded.TokenVersion != 2 {
			t.Errorf("expected token version 2, got %d", reloaded.TokenVersion)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		err := svc.RevokeTokens("0190a3c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		created := testutil.CreateTestUser(t, db)
		user, err := svc.GetUserByID(created.ID)
		testutil.AssertNoError(t, err)
		if user.Email != created.Email {
			t.Errorf("expected email %s, got %s", created.Email, user.Email)
		}
	})

	t.Run("malformed_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		_, err := svc.GetUserByID("42")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestListUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc, _ := newTestUserService(t, db)

	testutil.CreateTestUserWithEmail(t, db, "b@example.com", "Budi", models.RoleUser)
	testutil.CreateTestUserWithEmail(t, db, "a@example.com", "Ani", models.RoleUser)
	testutil.CreateTestUserWithEmail(t, db, "h@example.com", "Hana", models.RoleHayabusa)

	t.Run("all_users_by_name", func(t *testing.T) {
		users, err := svc.ListUsers(nil)
		testutil.AssertNoError(t, err)
		if len(users) != 3 {
			t.Fatalf("expected 3 users, got %d", len(users))
		}
		if users[0].Name != "Ani" {
			t.Errorf("expected Ani first, got %s", users[0].Name)
		}
	})

	t.Run("filtered_by_role", func(t *testing.T) {
		role := models.RoleHayabusa
		users, err := svc.ListUsers(&role)
		testutil.AssertNoError(t, err)
		if len(users) != 1 || users[0].Name != "Hana" {
			t.Errorf("expected only Hana, got %+v", users)
		}
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		user, err := svc.CreateUser(UserInput{
			Name:     "Siti",
			Email:    "Siti@Example.com",
			Password: "secret123",
			Role:     models.RoleFinance,
			BankName: "BCA",
		}, nil)
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected an ID")
		}
		if user.Email != "siti@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.Role != models.RoleFinance {
			t.Errorf("expected finance, got %s", user.Role)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")); err != nil {
			t.Error("expected the password to be hashed with bcrypt")
		}
	})

	t.Run("defaults_role_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		user, err := svc.CreateUser(UserInput{Name: "Default", Email: "default@example.com", Password: "secret123"}, nil)
		testutil.AssertNoError(t, err)
		if user.Role != models.RoleUser {
			t.Errorf("expected role user, got %s", user.Role)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		testutil.CreateTestUserWithEmail(t, db, "dup@example.com", "Dup", models.RoleUser)
		_, err := svc.CreateUser(UserInput{Name: "Dup", Email: "DUP@example.com", Password: "secret123"}, nil)
		testutil.AssertFieldError(t, err, "email")
	})

	t.Run("with_profile_picture", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, root := newTestUserService(t, db)

		user, err := svc.CreateUser(UserInput{Name: "Pic", Email: "pic@example.com", Password: "secret123"}, pngUpload())
		testutil.AssertNoError(t, err)

		if !strings.HasPrefix(user.ProfilePicture, ProfilePictureDir+"/") || !strings.HasSuffix(user.ProfilePicture, ".png") {
			t.Errorf("unexpected picture path %q", user.ProfilePicture)
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(user.ProfilePicture))); err != nil {
			t.Errorf("expected picture on disk: %v", err)
		}
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("admin_changes_role_of_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		target := testutil.CreateTestUser(t, db)

		updated, err := svc.UpdateUser(policy.Actor{ID: admin.ID, Role: admin.Role}, target.ID, UserInput{
			Name:  "Renamed",
			Email: target.Email,
			Role:  models.RoleHayabusa,
		}, nil)
		testutil.AssertNoError(t, err)
		if updated.Role != models.RoleHayabusa || updated.Name != "Renamed" {
			t.Errorf("unexpected user after update: %+v", updated)
		}
		if updated.Password != target.Password {
			t.Error("expected password to stay unchanged when omitted")
		}
	})

	t.Run("self_role_change_refused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		_, err := svc.UpdateUser(policy.Actor{ID: admin.ID, Role: admin.Role}, admin.ID, UserInput{
			Name:  admin.Name,
			Email: admin.Email,
			Role:  models.RoleUser,
		}, nil)
		testutil.AssertAppError(t, err, "SELF_ROLE_CHANGE")

		var reloaded models.User
		db.First(&reloaded, "id = ?", admin.ID)
		if reloaded.Role != models.RoleAdmin {
			t.Errorf("expected role to remain admin, got %s", reloaded.Role)
		}
	})

	t.Run("self_update_keeping_role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		_, err := svc.UpdateUser(policy.Actor{ID: admin.ID, Role: admin.Role}, admin.ID, UserInput{
			Name:     "Boss",
			Email:    admin.Email,
			Role:     models.RoleAdmin,
			Password: "newsecret",
		}, nil)
		testutil.AssertNoError(t, err)
	})

	t.Run("email_taken_by_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		other := testutil.CreateTestUser(t, db)
		target := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateUser(policy.Actor{ID: admin.ID, Role: admin.Role}, target.ID, UserInput{
			Name:  target.Name,
			Email: other.Email,
		}, nil)
		testutil.AssertFieldError(t, err, "email")
	})

	t.Run("replaces_profile_picture", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, root := newTestUserService(t, db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		actor := policy.Actor{ID: admin.ID, Role: admin.Role}
		target := testutil.CreateTestUser(t, db)
		input := UserInput{Name: target.Name, Email: target.Email}

		first, err := svc.UpdateUser(actor, target.ID, input, pngUpload())
		testutil.AssertNoError(t, err)
		oldPath := first.ProfilePicture

		gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
		second, err := svc.UpdateUser(actor, target.ID, input, &Upload{Filename: "a.gif", Size: int64(len(gif)), Content: bytes.NewReader(gif)})
		testutil.AssertNoError(t, err)

		if second.ProfilePicture == oldPath || !strings.HasSuffix(second.ProfilePicture, ".gif") {
			t.Errorf("expected a new gif picture, got %q", second.ProfilePicture)
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(oldPath))); !os.IsNotExist(err) {
			t.Errorf("expected old picture to be removed, stat err = %v", err)
		}
	})

	t.Run("rejects_non_image_upload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		target := testutil.CreateTestUser(t, db)
		text := []byte("just some text, not an image")

		_, err := svc.UpdateUser(policy.Actor{ID: admin.ID, Role: admin.Role}, target.ID, UserInput{Name: target.Name, Email: target.Email},
			&Upload{Filename: "avatar.png", Size: int64(len(text)), Content: bytes.NewReader(text)})
		testutil.AssertFieldError(t, err, "profile_picture")
	})

	t.Run("rejects_oversized_upload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, storage.NewLocalStore(t.TempDir()), 16)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		target := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateUser(policy.Actor{ID: admin.ID, Role: admin.Role}, target.ID, UserInput{Name: target.Name, Email: target.Email}, pngUpload())
		testutil.AssertFieldError(t, err, "profile_picture")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestUserService(t, db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		_, err := svc.UpdateUser(policy.Actor{ID: admin.ID, Role: admin.Role}, "0190a3c4-0000-7000-8000-000000000000", UserInput{Name: "x", Email: "x@example.com"}, nil)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
