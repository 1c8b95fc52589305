package policy

// defaultChangeTypes is the built-in registry. Order is significant: it is the
// order detections are reported in.
var defaultChangeTypes = []ChangeType{
	{
		ID:   "env_var",
		Name: "ENV VAR CHANGES",
		Patterns: []string{
			`NEXT_PUBLIC_`,
			`process\.env\.`,
			`\.env`,
			`os\.environ`,
			`os\.getenv`,
		},
		Checks: []string{
			"Grep for fallback patterns: || 'http://localhost'",
			"Test with production config: NEXT_PUBLIC_API_BASE='' npm run dev",
			"Check Network tab for any localhost requests",
			"Run /config-audit for deeper analysis",
		},
	},
	{
		ID:   "auth",
		Name: "AUTH CHANGES",
		Patterns: []string{
			`clearToken`,
			`removeToken`,
			`deleteToken`,
			`logout`,
			`signOut`,
			`useAuth`,
			`AuthContext`,
			`token.*clear`,
			`session.*destroy`,
		},
		Checks: []string{
			"Trace all paths to token clearing functions",
			"Test auth cascade: what happens on 401 response?",
			"Verify network failures don't incorrectly clear auth state",
			"Test login/logout flow end-to-end",
		},
	},
	{
		ID:   "link",
		Name: "LINK/ROUTE CHANGES",
		Patterns: []string{
			`<Link`,
			`href="/`,
			`href='/'`,
			`router\.push`,
			`router\.replace`,
			`navigate\(`,
			`useNavigate`,
		},
		Checks: []string{
			"Run: python tools/validate_links.py <frontend_dir>",
			"Verify target routes exist in app/ directory",
			"Test navigation in browser",
		},
	},
	{
		ID:   "api_route",
		Name: "API ROUTE CHANGES",
		Patterns: []string{
			`@app\.(get|post|put|delete|patch)`,
			`@router\.(get|post|put|delete|patch)`,
			`APIRouter`,
			`app/api/.*route`,
			`FastAPI`,
		},
		Checks: []string{
			"Test through proxy (not direct localhost)",
			"Check for 307 trailing slash redirects",
			"Verify Authorization headers survive redirects",
			"Test with curl through actual endpoint",
		},
	},
	{
		ID:   "websocket",
		Name: "WEBSOCKET CHANGES",
		Patterns: []string{
			`WebSocket`,
			`wss://`,
			`ws://`,
			`useWebSocket`,
			`socket\.on`,
			`socket\.emit`,
		},
		Checks: []string{
			"Test with production WebSocket URL, not localhost",
			"Check for fallback patterns in WS URL construction",
			"Verify reconnection logic works",
			"Check browser console for WS connection errors",
		},
	},
	{
		ID:   "database",
		Name: "DATABASE CHANGES",
		Patterns: []string{
			`CREATE TABLE`,
			`ALTER TABLE`,
			`DROP TABLE`,
			`migration`,
			// Multiline mode: matches any corpus line ending in .sql,
			// not only the end of the whole corpus.
			`\.sql$`,
			`prisma migrate`,
			`alembic`,
		},
		Checks: []string{
			"Run migrations in dev environment first",
			"Verify rollback works",
			"Check for data integrity after migration",
			"Test with production-like data volume",
		},
	},
	{
		ID:   "proxy",
		Name: "PROXY/CORS CHANGES",
		Patterns: []string{
			`proxy`,
			`rewrites`,
			`next\.config`,
			`nginx`,
			`CORS`,
			`Access-Control`,
		},
		Checks: []string{
			"Test full request flow through proxy",
			"Verify headers are preserved (especially Authorization)",
			"Check for redirect loops",
			"Test from browser, not just curl",
		},
	},
	{
		ID:   "datetime_boundary",
		Name: "DATETIME/EXCEL BOUNDARY CHANGES",
		Patterns: []string{
			`datetime`,
			`timezone`,
			`tzinfo`,
			`openpyxl`,
			`xlsxwriter`,
			`pandas.*to_excel`,
			`\.xls`,
		},
		Checks: []string{
			"Use tz-aware datetimes in tests: datetime.now(timezone.utc)",
			"Test with real DB objects, not mocks (PostgreSQL returns tz-aware)",
			"Add contract test: assert dt.tzinfo is None before Excel export",
			"Check: does code handle both naive and tz-aware inputs?",
		},
	},
	{
		ID:   "serialization_boundary",
		Name: "SERIALIZATION BOUNDARY CHANGES",
		Patterns: []string{
			`\.to_dict`,
			`\.model_dump`,
			`json\.dumps`,
			`jsonify`,
			`StreamingResponse`,
			`FileResponse`,
			`BytesIO`,
		},
		Checks: []string{
			"Test with production data types (UUID objects, Decimal, datetime)",
			"Verify JSON serialization doesn't lose type info",
			"Check: custom encoders for non-JSON-native types?",
			"E2E test: parse the actual output, not just status code",
		},
	},
	{
		ID:   "orm_boundary",
		Name: "ORM/DATABASE BOUNDARY CHANGES",
		Patterns: []string{
			`\.query\(`,
			`\.filter\(`,
			`\.all\(\)`,
			`\.first\(\)`,
			`session\.`,
			`db_session`,
			`AsyncSession`,
		},
		Checks: []string{
			"Integration test with real DB, not mocked queries",
			"Test data should match DB column types exactly",
			"Check: datetime columns -> tz-aware in PostgreSQL",
			"Check: UUID columns -> UUID objects, not strings",
		},
	},
	{
		ID:   "file_export",
		Name: "FILE EXPORT CHANGES",
		Patterns: []string{
			`build_excel`,
			`to_csv`,
			`to_excel`,
			`write.*xlsx`,
			`Workbook\(`,
			`csv\.writer`,
		},
		Checks: []string{
			"Test export with production-like data (tz-aware dates, UUIDs)",
			"Actually parse the output file in tests, don't just check size",
			"Property test: handle both naive and tz-aware datetime inputs",
			"Boundary test: verify data survives round-trip (export -> import)",
		},
	},
}
