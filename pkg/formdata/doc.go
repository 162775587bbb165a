// Package formdata provides the field types flows compose into their typed
// form records: option selections with cardinality bounds and ordered upload
// lists that validate files at intake and own their preview handles.
//
// Writes never validate step completeness; that is a separate read performed
// by the flow's step validators.
package formdata
