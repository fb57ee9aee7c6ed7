/*
Package remote is the client of the remote counter service.

The service identifies players by a token obtained from POST /register. The token is
cached for a day in the REMOTE_STORE_CACHE namespace of an answer backend and verified
once per client with GET /check_token before use. Counters are bumped with POST /inc
and read with GET /getc.
*/
package remote
