// Package security holds the TLS settings used to reach remote inference
// servers over HTTPS.
//
//	llm:
//	  server_url: https://gpu-box:5143
//	  tls:
//	    ca_file: /etc/locallm/ca.pem
package security
