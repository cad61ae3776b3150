package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/shared"
)

func newSchemaFixture() (*SchemaService, *fakeDatabaseRepo, *fakeActivityRepo) {
	databases := newFakeDatabaseRepo()
	activity := newFakeActivityRepo()
	svc := NewSchemaService(databases, NewActivityService(activity))
	return svc, databases, activity
}

func TestCreateDatabase(t *testing.T) {
	svc, _, activity := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)

	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)
	assert.NotZero(t, db.ID)
	assert.Equal(t, uint(1), db.TenantID)
	assert.Empty(t, db.Fields)

	entries := activity.forTenant(1, model.ActionCreateDatabase)
	require.Len(t, entries, 1)
	assert.Equal(t, admin.UserID, entries[0].UserID)
}

func TestCreateDatabase_Validation(t *testing.T) {
	svc, _, activity := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)

	_, err := svc.CreateDatabase(context.Background(), admin, "   ")
	assert.ErrorIs(t, err, shared.ErrorInvalidInput)
	assert.Empty(t, activity.forTenant(1, ""))
}

func TestCreateDatabase_NameUniquePerTenant(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)

	_, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	_, err = svc.CreateDatabase(context.Background(), admin, "Tasks")
	assert.ErrorIs(t, err, shared.ErrorConflict)

	// comparison is case-sensitive, a different casing is a different name
	_, err = svc.CreateDatabase(context.Background(), admin, "tasks")
	assert.NoError(t, err)

	// another tenant may reuse the name
	other := &Principal{UserID: 9, TenantID: 2, Role: model.RoleAdmin}
	_, err = svc.CreateDatabase(context.Background(), other, "Tasks")
	assert.NoError(t, err)
}

func TestCreateDatabase_DeletedNameIsReleased(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)

	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDatabase(context.Background(), admin, db.ID))

	_, err = svc.CreateDatabase(context.Background(), admin, "Tasks")
	assert.NoError(t, err)
}

func TestDatabaseMutations_RequireAdmin(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	spec := FieldSpec{Name: "Title", Type: model.FieldTypeText}
	for _, role := range []model.Role{model.RoleEditor, model.RoleViewer} {
		p := principal(1, role)

		_, err := svc.CreateDatabase(context.Background(), p, "Other")
		assert.ErrorIs(t, err, shared.ErrorForbidden)

		_, err = svc.UpdateDatabase(context.Background(), p, db.ID, "Renamed")
		assert.ErrorIs(t, err, shared.ErrorForbidden)

		assert.ErrorIs(t, svc.DeleteDatabase(context.Background(), p, db.ID), shared.ErrorForbidden)

		_, err = svc.AddField(context.Background(), p, db.ID, spec)
		assert.ErrorIs(t, err, shared.ErrorForbidden)
	}

	_, err = svc.CreateDatabase(context.Background(), nil, "Anon")
	assert.ErrorIs(t, err, shared.ErrorAuthenticationRequired)
}

func TestUpdateDatabase_Rename(t *testing.T) {
	svc, _, activity := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	renamed, err := svc.UpdateDatabase(context.Background(), admin, db.ID, "Projects")
	require.NoError(t, err)
	assert.Equal(t, "Projects", renamed.Name)

	got, err := svc.GetDatabase(context.Background(), admin, db.ID)
	require.NoError(t, err)
	assert.Equal(t, "Projects", got.Name)

	assert.Len(t, activity.forTenant(1, model.ActionUpdateDatabase), 1)
}

func TestUpdateDatabase_CrossTenantIsNotFound(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	intruder := &Principal{UserID: 9, TenantID: 2, Role: model.RoleAdmin}
	_, err = svc.UpdateDatabase(context.Background(), intruder, db.ID, "Stolen")
	assert.ErrorIs(t, err, shared.ErrorNotFound)

	_, err = svc.GetDatabase(context.Background(), intruder, db.ID)
	assert.ErrorIs(t, err, shared.ErrorNotFound)
}

func TestDeleteDatabase_SoftDelete(t *testing.T) {
	svc, databases, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)
	keep, err := svc.CreateDatabase(context.Background(), admin, "Notes")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDatabase(context.Background(), admin, db.ID))

	// row is kept, flagged
	assert.True(t, databases.databases[db.ID].IsDeleted)

	_, err = svc.GetDatabase(context.Background(), admin, db.ID)
	assert.ErrorIs(t, err, shared.ErrorNotFound)

	list, err := svc.ListDatabases(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestAddField(t *testing.T) {
	svc, _, activity := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Title", Type: model.FieldTypeText})
	require.NoError(t, err)
	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{
		Name:    "Status",
		Type:    model.FieldTypeSelect,
		Options: []string{"open", "done"},
	})
	require.NoError(t, err)

	require.Len(t, db.Fields, 2)
	assert.Equal(t, []string{"Title", "Status"}, db.Fields.Names())
	assert.NotEmpty(t, db.Fields[0].ID)
	assert.NotEqual(t, db.Fields[0].ID, db.Fields[1].ID)

	assert.Len(t, activity.forTenant(1, model.ActionCreateField), 2)
}

func TestAddField_NameConflictIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Contacts")
	require.NoError(t, err)

	_, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Email", Type: model.FieldTypeText})
	require.NoError(t, err)

	_, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "email", Type: model.FieldTypeText})
	assert.ErrorIs(t, err, shared.ErrorConflict)
}

func TestAddField_InvalidSpec(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	_, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "", Type: model.FieldTypeText})
	assert.ErrorIs(t, err, shared.ErrorInvalidInput)

	_, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "X", Type: "geo_point"})
	assert.ErrorIs(t, err, shared.ErrorInvalidInput)
}

func TestUpdateField_KeepsIDAndPosition(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Title", Type: model.FieldTypeText})
	require.NoError(t, err)
	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Count", Type: model.FieldTypeNumber})
	require.NoError(t, err)

	fieldID := db.Fields[0].ID
	db, err = svc.UpdateField(context.Background(), admin, db.ID, fieldID, FieldSpec{Name: "Headline", Type: model.FieldTypeText})
	require.NoError(t, err)

	require.Len(t, db.Fields, 2)
	assert.Equal(t, fieldID, db.Fields[0].ID)
	assert.Equal(t, "Headline", db.Fields[0].Name)
	assert.Equal(t, "Count", db.Fields[1].Name)
}

func TestUpdateField_TypeChangeAllowed(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)
	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Due", Type: model.FieldTypeText})
	require.NoError(t, err)

	db, err = svc.UpdateField(context.Background(), admin, db.ID, db.Fields[0].ID, FieldSpec{Name: "Due", Type: model.FieldTypeDate})
	require.NoError(t, err)
	assert.Equal(t, model.FieldTypeDate, db.Fields[0].Type)
}

func TestUpdateField_NameConflictWithSibling(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)
	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Title", Type: model.FieldTypeText})
	require.NoError(t, err)
	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Notes", Type: model.FieldTypeText})
	require.NoError(t, err)

	// renaming onto a sibling's name fails, regardless of casing
	_, err = svc.UpdateField(context.Background(), admin, db.ID, db.Fields[1].ID, FieldSpec{Name: "TITLE", Type: model.FieldTypeText})
	assert.ErrorIs(t, err, shared.ErrorConflict)

	// keeping the field's own name is not a conflict
	_, err = svc.UpdateField(context.Background(), admin, db.ID, db.Fields[1].ID, FieldSpec{Name: "notes", Type: model.FieldTypeText})
	assert.NoError(t, err)
}

func TestUpdateField_UnknownField(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	_, err = svc.UpdateField(context.Background(), admin, db.ID, "missing-id", FieldSpec{Name: "X", Type: model.FieldTypeText})
	assert.ErrorIs(t, err, shared.ErrorNotFound)
}

func TestRemoveField(t *testing.T) {
	svc, _, activity := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)
	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Title", Type: model.FieldTypeText})
	require.NoError(t, err)
	db, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "Notes", Type: model.FieldTypeText})
	require.NoError(t, err)

	db, err = svc.RemoveField(context.Background(), admin, db.ID, db.Fields[0].ID)
	require.NoError(t, err)
	require.Len(t, db.Fields, 1)
	assert.Equal(t, "Notes", db.Fields[0].Name)

	_, err = svc.RemoveField(context.Background(), admin, db.ID, "missing-id")
	assert.ErrorIs(t, err, shared.ErrorNotFound)

	assert.Len(t, activity.forTenant(1, model.ActionDeleteField), 1)
}

func TestSchemaReads_AllowViewer(t *testing.T) {
	svc, _, _ := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)

	viewer := principal(1, model.RoleViewer)
	_, err = svc.GetDatabase(context.Background(), viewer, db.ID)
	assert.NoError(t, err)

	list, err := svc.ListDatabases(context.Background(), viewer)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListDatabases(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrorAuthenticationRequired)
}

func TestSchemaMutations_NoAuditOnFailure(t *testing.T) {
	svc, _, activity := newSchemaFixture()
	admin := principal(1, model.RoleAdmin)
	db, err := svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.NoError(t, err)
	before := len(activity.forTenant(1, ""))

	_, err = svc.CreateDatabase(context.Background(), admin, "Tasks")
	require.Error(t, err)
	_, err = svc.AddField(context.Background(), admin, db.ID, FieldSpec{Name: "", Type: model.FieldTypeText})
	require.Error(t, err)
	_, err = svc.UpdateDatabase(context.Background(), admin, 999, "X")
	require.Error(t, err)

	assert.Len(t, activity.forTenant(1, ""), before)
}
