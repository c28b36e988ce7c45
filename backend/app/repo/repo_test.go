package repo

import (
	"bytes"
	"log"
	"testing"
	"time"

	"filepower/backend/app/db"
	"filepower/backend/app/models"
	"filepower/explorer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRepositories_SQLite(t *testing.T) {
	gdb, err := db.Connect(db.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	exerciseRepositories(t, gdb)
}

func TestLookups_MissIsNotLogged(t *testing.T) {
	gdb, err := db.Connect(db.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))
	var buf bytes.Buffer
	quiet := gdb.Session(&gorm.Session{Logger: logger.New(log.New(&buf, "", 0), logger.Config{LogLevel: logger.Warn})})

	users, folders, files := NewUserRepository(quiet), NewFolderRepository(quiet), NewFileRepository(quiet)
	u, err := users.FindByEmail("new@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
	u, err = users.FindAnyByEmail("new@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
	u, err = users.FindByID("missing")
	require.NoError(t, err)
	assert.Nil(t, u)
	f, err := folders.FindByID("missing")
	require.NoError(t, err)
	assert.Nil(t, f)
	file, err := files.FindByID("missing")
	require.NoError(t, err)
	assert.Nil(t, file)

	assert.Empty(t, buf.String())
}

// exerciseRepositories runs the same checks against any migrated driver.
func exerciseRepositories(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Run("folders", func(t *testing.T) { folderChecks(t, gdb) })
	t.Run("users", func(t *testing.T) { userChecks(t, gdb) })
	t.Run("logs", func(t *testing.T) { logChecks(t, gdb) })
}

func folderChecks(t *testing.T, gdb *gorm.DB) {
	folders, files := NewFolderRepository(gdb), NewFileRepository(gdb)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	projects := &models.Folder{Name: "Projects", CreatedBy: "u1"}
	require.NoError(t, folders.Create(projects))
	drafts := &models.Folder{Name: "Drafts", ParentID: &projects.ID, CreatedBy: "u1"}
	require.NoError(t, folders.Create(drafts))
	old := &models.Folder{Name: "Old", ParentID: &drafts.ID, CreatedBy: "u1"}
	require.NoError(t, folders.Create(old))

	plan := &models.File{Name: "plan.txt", Path: "u1/plan.txt", Size: 4, FolderID: &projects.ID, UploadedBy: "u1", UploaderEmail: "ann@example.com", UploadedAt: base}
	scrap := &models.File{Name: "scrap.txt", Path: "u1/scrap.txt", Size: 5, FolderID: &old.ID, UploadedBy: "u1", UploaderEmail: "ann@example.com", UploadedAt: base.Add(time.Hour)}
	loose := &models.File{Name: "loose.pdf", Path: "u2/loose.pdf", Size: 6, UploadedBy: "u2", UploaderEmail: "bob@example.com", UploadedAt: base.Add(2 * time.Hour)}
	for _, f := range []*models.File{plan, scrap, loose} {
		require.NoError(t, files.Create(f))
	}

	top, err := folders.ListByParent(nil)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Projects", top[0].Name)
	assert.EqualValues(t, 1, top[0].FileCount)
	assert.EqualValues(t, 1, top[0].FolderCount)

	names, err := folders.SiblingNames(&projects.ID, drafts.ID)
	require.NoError(t, err)
	assert.Empty(t, names)

	ids, err := folders.Subtree(projects.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{projects.ID, drafts.ID, old.ID}, ids)

	ok, err := files.ExistsByName("plan.txt", &projects.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = files.ExistsByName("plan.txt", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	newest, err := files.ListNewest(0, 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, []string{loose.ID, scrap.ID}, []string{newest[0].ID, newest[1].ID})
	rest, err := files.ListNewest(2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, plan.ID, rest[0].ID)

	ok, err = files.Rename(plan.ID, "plan-v2.txt", "u1/Projects/plan-v2.txt", "u2", base)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := files.FindByID(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "plan-v2.txt", got.Name)
	require.NotNil(t, got.LastRenamedBy)
	assert.Equal(t, "u2", *got.LastRenamedBy)

	ok, err = files.Move(loose.ID, &projects.ID, "u2/Projects/loose.pdf", "u1", base)
	require.NoError(t, err)
	assert.True(t, ok)
	inProjects, err := files.ListByFolder(&projects.ID)
	require.NoError(t, err)
	require.Len(t, inProjects, 2)
	assert.Equal(t, loose.ID, inProjects[0].ID, "newest upload first")

	ok, err = files.Rename("missing", "x", "x", "u1", base)
	require.NoError(t, err)
	assert.False(t, ok)

	sub, err := folders.Subtree(drafts.ID)
	require.NoError(t, err)
	require.NoError(t, folders.DeleteTree(sub))
	gone, err := folders.FindByID(old.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	gf, err := files.FindByID(scrap.ID)
	require.NoError(t, err)
	assert.Nil(t, gf)
	kept, err := folders.FindByID(projects.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func userChecks(t *testing.T, gdb *gorm.DB) {
	users := NewUserRepository(gdb)
	ann := &models.User{Email: "ann@example.com", PasswordHash: "x", Role: models.RoleAdmin, FullName: "Ann Smith"}
	cid := &models.User{Email: "cid@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, users.Create(ann))
	require.NoError(t, users.Create(cid))

	ok, err := users.SoftDelete(ann.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = users.SoftDelete(ann.ID)
	require.NoError(t, err)
	assert.False(t, ok, "already deleted")

	u, err := users.FindByEmail("ann@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
	u, err = users.FindAnyByEmail("ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ann Smith", u.FullName)

	deleted, err := users.ListDeleted()
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	names, err := users.NamesByEmail([]string{"ann@example.com", "cid@example.com", "nobody@example.com"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ann@example.com": "Ann Smith", "cid@example.com": ""}, names)
}

func logChecks(t *testing.T, gdb *gorm.DB) {
	logs := NewFileLogRepository(gdb)
	for _, a := range []explorer.Action{explorer.ActionUpload, explorer.ActionUpload, explorer.ActionMove} {
		require.NoError(t, logs.Create(&models.FileLog{UserID: "u1", UserEmail: "ann@example.com", Action: a, FileName: "plan.txt"}))
	}

	uploads, err := logs.List(LogFilter{Action: explorer.ActionUpload})
	require.NoError(t, err)
	assert.Len(t, uploads, 2)

	all, err := logs.List(LogFilter{Action: explorer.ActionAll, Limit: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, explorer.ActionMove, all[0].Action, "newest first")

	counts, err := logs.CountByAction()
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[explorer.ActionUpload])
	assert.EqualValues(t, 1, counts[explorer.ActionMove])
	assert.Zero(t, counts[explorer.ActionDeleteFolder])
}
