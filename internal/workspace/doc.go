// Package workspace builds Google Workspace API clients for linked
// users. Each client is constructed per call from the user's stored
// refresh token; clients for different users never share credentials.
package workspace
