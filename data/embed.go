package data

import (
	_ "embed"
)

//go:embed initdb/mysql/002-ddl-privileges.sql
var InitdbMySQLPrivileges string
