/*
Package deploy provides deployment of the Splitter contract to a Neo network.

Deployment is idempotent: the contract address depends only on the deploying
account and the contract itself, so repeated runs find the deployed contract
and only update it when the local code is newer.
*/
package deploy
