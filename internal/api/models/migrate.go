package models

// All lists the catalog models in creation order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Role{},
		&UserRole{},
		&TableGroup{},
		&CatalogTable{},
		&RoleGroupPermission{},
		&Dataset{},
		&Chart{},
		&Share{},
		&Dashboard{},
		&Comment{},
		&QueryHistory{},
	}
}
