package repo

import (
	"testing"
	"time"

	"analytics/internal/api/models"
	"analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate catalog")
	return db
}

func createDataset(t *testing.T, db *gorm.DB) models.Dataset {
	ds := models.Dataset{Database: "dev", SchemaName: "public", Table: "sales"}
	require.NoError(t, NewDatasetRepository(db).Create(&ds))
	return ds
}

func TestChart_RoundTrip(t *testing.T) {
	db := setupRepoTestDB(t)
	ds := createDataset(t, db)
	charts := NewChartRepository(db)

	limit := 5
	order := "asc"
	dim := "channel"
	query := models.ChartQuerySpec{
		DatasetID:      ds.ID,
		ChartType:      "bar",
		LabelFields:    []string{"region"},
		ValueFields:    []string{"SUM(amount)", "COUNT(id)"},
		DimensionField: &dim,
		Filters: map[string]models.FilterItem{
			"status":     {Operator: "=", Value: models.Scalar("paid")},
			"created_at": {Operator: "between", Value: models.Range("2023-01-01", "2023-12-31"), FilterType: "date"},
		},
		Limit:     &limit,
		SortOrder: &order,
	}
	config := models.ChartConfig{ColorScheme: "pastel1", ShowLegend: false, Limit: 5, SortOrder: "asc"}

	chart := models.Chart{Name: "Revenue", DatasetID: ds.ID, Query: query, Config: config, Owner: "alice"}
	require.NoError(t, charts.Create(&chart))
	require.NotZero(t, chart.ID)

	loaded, err := charts.FindByID(chart.ID)
	require.NoError(t, err)
	assert.Equal(t, query, loaded.Query)
	assert.Equal(t, config, loaded.Config)
	assert.Equal(t, "alice", loaded.Owner)
	assert.Empty(t, loaded.SharedWith)
}

func TestChart_LegacyValueFieldNormalizedOnRead(t *testing.T) {
	db := setupRepoTestDB(t)
	ds := createDataset(t, db)

	legacy := `{"dataset_id":1,"label_fields":["region"],"value_field":"SUM(amount)"}`
	require.NoError(t, db.Exec(
		"INSERT INTO charts (name, dataset_id, query, config, owner, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"old", ds.ID, legacy, `{"colorScheme":"tableau10","showLegend":true,"limit":10,"sortOrder":"desc"}`, "bob", time.Now(), time.Now(),
	).Error)

	var stored models.Chart
	require.NoError(t, db.Where("name = ?", "old").First(&stored).Error)
	assert.Equal(t, []string{"SUM(amount)"}, stored.Query.ValueFields)
	assert.Empty(t, stored.Query.LegacyValueField)
}

func TestChart_VisibilityAndShares(t *testing.T) {
	db := setupRepoTestDB(t)
	ds := createDataset(t, db)
	charts := NewChartRepository(db)
	shares := NewShareRepository(db)

	mine := models.Chart{Name: "mine", DatasetID: ds.ID, Owner: "alice", Config: models.DefaultChartConfig(),
		Query: models.ChartQuerySpec{DatasetID: ds.ID, LabelFields: []string{"a"}, ValueFields: []string{"SUM(b)"}}}
	theirs := mine
	theirs.Name, theirs.Owner = "theirs", "bob"
	hidden := mine
	hidden.Name, hidden.Owner = "hidden", "carol"
	require.NoError(t, charts.Create(&mine))
	require.NoError(t, charts.Create(&theirs))
	require.NoError(t, charts.Create(&hidden))

	require.NoError(t, shares.Add(models.ResourceChart, theirs.ID, "alice"))
	require.NoError(t, shares.Add(models.ResourceChart, theirs.ID, "alice"), "sharing twice is a no-op")

	visible, err := charts.FindVisibleTo("alice")
	require.NoError(t, err)
	names := []string{}
	for _, c := range visible {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"mine", "theirs"}, names)

	loaded, err := charts.FindByID(theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, loaded.SharedWith)
	assert.True(t, loaded.CanView("alice"))
	assert.False(t, loaded.CanView("carol"))

	found, err := charts.ExistingIDs([]uint{mine.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, []uint{mine.ID}, found)

	require.NoError(t, charts.Delete(theirs.ID))
	users, err := shares.UsersFor(models.ResourceChart, theirs.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDataset_Delete(t *testing.T) {
	db := setupRepoTestDB(t)
	ds := createDataset(t, db)
	datasets := NewDatasetRepository(db)

	exists, err := datasets.ExistsByID(ds.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	deleted, err := datasets.Delete(ds.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = datasets.Delete(ds.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func seedRoles(t *testing.T, db *gorm.DB) *RoleRepository {
	roles := NewRoleRepository(db)

	finance := models.Role{RoleName: "finance"}
	admin := models.Role{RoleName: models.AdminRole}
	require.NoError(t, roles.CreateRole(&finance))
	require.NoError(t, roles.CreateRole(&admin))

	payments := models.TableGroup{GroupName: "payments"}
	hr := models.TableGroup{GroupName: "hr"}
	require.NoError(t, roles.CreateGroup(&payments))
	require.NoError(t, roles.CreateGroup(&hr))

	require.NoError(t, roles.AddTable(&models.CatalogTable{Name: "transactions", Description: "card payments", GroupID: &payments.ID}))
	require.NoError(t, roles.AddTable(&models.CatalogTable{Name: "partners", GroupID: &payments.ID}))
	require.NoError(t, roles.AddTable(&models.CatalogTable{Name: "salaries", GroupID: &hr.ID}))

	require.NoError(t, roles.SetRoleGroups(finance.ID, []uint{payments.ID}))
	require.NoError(t, roles.AssignRole("alice", finance.ID))
	require.NoError(t, roles.AssignRole("root", admin.ID))
	return roles
}

func TestRole_Directory(t *testing.T) {
	db := setupRepoTestDB(t)
	roles := seedRoles(t, db)

	role, err := roles.RoleOf("alice")
	require.NoError(t, err)
	assert.Equal(t, "finance", role)

	_, err = roles.RoleOf("nobody")
	var denied *domain.PermissionDeniedError
	assert.ErrorAs(t, err, &denied)

	tables, err := roles.AllowedTables("finance")
	require.NoError(t, err)
	assert.Equal(t, []string{"partners", "transactions"}, tables)

	all, err := roles.AllowedTables(models.AdminRole)
	require.NoError(t, err)
	assert.Equal(t, []string{"partners", "salaries", "transactions"}, all)

	groups, err := roles.GroupsFor("finance")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "payments", groups[0].GroupName)
	assert.Len(t, groups[0].Tables, 2)

	adminGroups, err := roles.GroupsFor(models.AdminRole)
	require.NoError(t, err)
	assert.Len(t, adminGroups, 2)

	none, err := roles.AllowedTables("ghost")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRole_ReplaceGroupsAndReassign(t *testing.T) {
	db := setupRepoTestDB(t)
	roles := seedRoles(t, db)

	finance, err := roles.RoleOf("alice")
	require.NoError(t, err)
	require.Equal(t, "finance", finance)

	groups, err := roles.ListGroups()
	require.NoError(t, err)
	var hrID, financeID uint
	for _, g := range groups {
		if g.GroupName == "hr" {
			hrID = g.ID
		}
	}
	list, err := roles.ListRoles()
	require.NoError(t, err)
	for _, r := range list {
		if r.RoleName == "finance" {
			financeID = r.ID
		}
	}

	require.NoError(t, roles.SetRoleGroups(financeID, []uint{hrID}))
	tables, err := roles.AllowedTables("finance")
	require.NoError(t, err)
	assert.Equal(t, []string{"salaries"}, tables)

	var adminID uint
	for _, r := range list {
		if r.RoleName == models.AdminRole {
			adminID = r.ID
		}
	}
	require.NoError(t, roles.AssignRole("alice", adminID))
	role, err := roles.RoleOf("alice")
	require.NoError(t, err)
	assert.Equal(t, models.AdminRole, role)
}

func TestHistory_Latest(t *testing.T) {
	db := setupRepoTestDB(t)
	history := NewHistoryRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		require.NoError(t, history.Create(&models.QueryHistory{
			ID:        string(rune('a'+i)) + "-id",
			Username:  "alice",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Question:  "q",
		}))
	}
	require.NoError(t, history.Create(&models.QueryHistory{ID: "other", Username: "bob", Timestamp: base, Question: "q"}))

	latest, err := history.Latest("alice", 5)
	require.NoError(t, err)
	require.Len(t, latest, 5)
	assert.Equal(t, "g-id", latest[0].ID)
	assert.Equal(t, "c-id", latest[4].ID)
}

func TestComment_Order(t *testing.T) {
	db := setupRepoTestDB(t)
	comments := NewCommentRepository(db)

	first := models.Comment{ResourceType: models.ResourceDashboard, ResourceID: 1, Username: "alice", Content: "first"}
	second := models.Comment{ResourceType: models.ResourceDashboard, ResourceID: 1, Username: "bob", Content: "second"}
	require.NoError(t, comments.Create(&first))
	require.NoError(t, comments.Create(&second))
	require.NoError(t, comments.Create(&models.Comment{ResourceType: models.ResourceChart, ResourceID: 1, Username: "bob", Content: "elsewhere"}))

	list, err := comments.FindFor(models.ResourceDashboard, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content)
}
