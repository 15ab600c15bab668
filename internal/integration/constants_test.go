package integration_test

const (
	TestToken = "integration-token"

	TestQuery      = "Matrix"
	TestEmptyQuery = "zzzqqqxxx"
	TestFailQuery  = "provider-down"

	TestMoviesPerPage = 20
	TestTotalPages    = 5
)
