// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package accountability

//go:generate mockgen -destination=mocks_test.go -package $GOPACKAGE . TransactionPool,BlockState,Logger
