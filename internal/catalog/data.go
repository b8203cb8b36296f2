package catalog

// Entries returns the bundled error knowledge base: known Azure Data
// Factory failure patterns collected from the connector and data-flow
// troubleshooting guides and operational experience.
//
// Returns a fresh slice on each call so a Catalog owns its data.
func Entries() []Entry {
	return []Entry{
		// Connectivity
		{
			ID:          "conn_tcp_sql",
			Category:    CategoryConnectivity,
			Severity:    SeverityHigh,
			Title:       "SQL Server TCP/IP Connection Failure",
			Pattern:     `TCP/IP connection to the host.*failed|TCP/IP connection to the host failed`,
			Description: "The pipeline cannot establish a TCP/IP connection to SQL Server. This typically happens when the server is unreachable, the port is blocked, or the SQL Server instance is not running.",
			Causes: []string{
				"SQL Server is not running or not listening on the expected port",
				"Firewall rules blocking port 1433 (or custom port)",
				"Network Security Group (NSG) rules blocking traffic",
				"VNet/subnet misconfiguration preventing connectivity",
				"Self-hosted Integration Runtime cannot reach the database",
				"DNS resolution failure for the server hostname",
			},
			Solutions: []string{
				"Verify SQL Server is running: Check Azure Portal > SQL Server > Status",
				"Check firewall rules: Azure Portal > SQL Server > Networking > Allow Azure services",
				"Test connectivity: Run Test-NetConnection from SHIR machine to server:port",
				"Verify NSG rules allow inbound traffic on the SQL port",
				"Check if private endpoint is configured correctly",
				"Verify DNS resolution: nslookup <server>.database.windows.net",
			},
			Prevention: []string{
				"Set up connection monitoring alerts",
				"Use managed private endpoints for secure connectivity",
				"Implement retry policies with exponential backoff",
				"Add a Lookup activity as a connectivity check before data operations",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-troubleshoot-guide"},
		},
		{
			ID:          "conn_timeout",
			Category:    CategoryConnectivity,
			Severity:    SeverityHigh,
			Title:       "Connection Timeout Error",
			Pattern:     `connection timed out|The operation has timed out|Connection timeout expired`,
			Description: "A data source connection attempt timed out before completing. This indicates the target system is either overloaded, unreachable, or too slow to respond.",
			Causes: []string{
				"Target server is overloaded or unresponsive",
				"Network latency between ADF and the data source",
				"Firewall or security appliance blocking/slowing connections",
				"Self-hosted IR machine has limited network bandwidth",
				"Connection pool exhaustion on the data source",
				"DNS resolution delays",
			},
			Solutions: []string{
				"Increase timeout settings in the linked service configuration",
				"Check target server health and performance metrics",
				"Move to a closer Azure region to reduce latency",
				"Use Azure IR instead of Self-hosted IR if possible",
				"Verify network path with traceroute/pathping",
				"Check integration runtime resource usage (CPU/memory)",
			},
			Prevention: []string{
				"Set appropriate timeout values (default may be too low)",
				"Implement circuit breaker pattern with retry policies",
				"Monitor server health proactively",
				"Schedule resource-intensive pipelines during off-peak hours",
			},
			EstimatedFixTime: "15-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-troubleshoot-guide"},
		},
		{
			ID:          "conn_ssl_tls",
			Category:    CategoryConnectivity,
			Severity:    SeverityHigh,
			Title:       "SSL/TLS Connection Error",
			Pattern:     `SSL|TLS|certificate|The underlying connection was closed|trust relationship`,
			Description: "SSL/TLS handshake or certificate validation failed during connection attempt.",
			Causes: []string{
				"Self-signed or expired SSL certificate on the data source",
				"TLS version mismatch between ADF and target server",
				"Certificate chain is incomplete or untrusted",
				"Network appliance intercepting/modifying SSL traffic",
			},
			Solutions: []string{
				"Update the SSL certificate on the target server",
				"Set encrypt=false in the connection string for testing (not recommended for production)",
				"Import the CA certificate into the SHIR machine's trusted root store",
				"Check TLS version compatibility: try TLS 1.2",
				"Verify certificate chain using openssl s_client -connect host:port",
			},
			Prevention: []string{
				"Set up certificate expiration monitoring",
				"Use Azure-managed certificates where possible",
				"Document SSL configuration for all linked services",
			},
			EstimatedFixTime: "20-60 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-troubleshoot-guide"},
		},
		// Authentication
		{
			ID:          "auth_login_failed",
			Category:    CategoryAuthentication,
			Severity:    SeverityCritical,
			Title:       "Authentication/Login Failure",
			Pattern:     `Login failed|Authentication failed|password authentication failed|Invalid credentials|Access denied`,
			Description: "The credentials provided in the linked service are incorrect, expired, or the user account is locked/disabled.",
			Causes: []string{
				"Username or password is incorrect in the linked service",
				"Password has expired or was recently rotated",
				"Account is locked due to too many failed attempts",
				"Service principal secret/certificate has expired",
				"Managed identity is not properly configured",
				"IP not in allowed list for the target resource",
			},
			Solutions: []string{
				"Verify credentials in the linked service configuration",
				"Test connection using the 'Test Connection' button in ADF",
				"Check if the password was recently changed and update linked service",
				"For service principals: renew the secret in Azure AD",
				"For managed identity: verify the identity is assigned to the ADF instance",
				"Check Azure AD sign-in logs for detailed error information",
			},
			Prevention: []string{
				"Use Azure Key Vault for credential management with auto-rotation",
				"Set up alerts for credential expiration",
				"Use managed identity authentication where possible",
				"Implement regular credential rotation procedures",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/store-credentials-in-key-vault"},
		},
		{
			ID:          "auth_aad_token",
			Category:    CategoryAuthentication,
			Severity:    SeverityCritical,
			Title:       "Azure AD Token Acquisition Failure",
			Pattern:     `AADSTS|Failed to acquire token|token|service principal|InvalidClientSecret|unauthorized_client`,
			Description: "Azure Active Directory could not issue an authentication token, preventing access to Azure resources.",
			Causes: []string{
				"Service principal client secret has expired",
				"Service principal has been deleted from Azure AD",
				"Incorrect tenant ID configured",
				"Application permission consent not granted",
				"Managed identity not enabled on the ADF instance",
				"Azure AD service is experiencing issues",
			},
			Solutions: []string{
				"Regenerate service principal secret: Azure Portal > App Registrations > Certificates & Secrets",
				"Verify tenant ID matches the Azure AD tenant",
				"Grant admin consent for required API permissions",
				"Enable system-assigned or user-assigned managed identity on ADF",
				"Check Azure AD service health at status.azure.com",
			},
			Prevention: []string{
				"Monitor service principal secret expiration dates",
				"Use managed identity instead of service principals where possible",
				"Set up Key Vault with auto-rotation for secrets",
				"Create alerts for Azure AD authentication failures",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-azure-data-lake-storage"},
		},
		// Permission
		{
			ID:          "perm_forbidden",
			Category:    CategoryPermission,
			Severity:    SeverityHigh,
			Title:       "Insufficient Permissions / Forbidden Access",
			Pattern:     `Forbidden|403|insufficient privileges|does not have permission|AuthorizationFailed|AccessDenied`,
			Description: "The authenticated identity lacks the necessary RBAC roles or ACL permissions to perform the requested operation.",
			Causes: []string{
				"Missing RBAC role assignment (e.g., Storage Blob Data Contributor)",
				"Firewall/VNET rules blocking the request",
				"ACL permissions not set on specific files/directories in ADLS Gen2",
				"Managed identity not granted access to the target resource",
				"Conditional Access policies blocking the request",
			},
			Solutions: []string{
				"Assign the correct RBAC role: e.g., Storage Blob Data Contributor for ADLS Gen2",
				"Add ADF's managed identity to the target resource's access control",
				"Check ADLS Gen2 ACL permissions on the specific path",
				"Verify firewall rules allow ADF's outbound IPs or VNet",
				"Use 'Allow trusted Microsoft services' option in storage firewall",
			},
			Prevention: []string{
				"Document all required permissions in a runbook",
				"Use managed identity with principle of least privilege",
				"Set up alerts for authorization failures in Azure Monitor",
				"Regularly audit RBAC assignments",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-azure-data-lake-storage"},
		},
		// Missing data / data quality
		{
			ID:          "dq_file_not_found",
			Category:    CategoryMissingData,
			Severity:    SeverityMedium,
			Title:       "File or Path Not Found",
			Pattern:     `FileNotFound|PathNotFound|NotFound|BlobNotFound|The specified path does not exist|The specified blob does not exist|ResourceNotFound`,
			Description: "The source file, blob, or path specified in the dataset does not exist at the expected location.",
			Causes: []string{
				"File has not been delivered by upstream system yet",
				"File path contains incorrect date/time parameters",
				"Dynamic path expression evaluates to a non-existent path",
				"File was moved, renamed, or deleted",
				"Case-sensitive file system and path case doesn't match",
				"Container or file system doesn't exist in the storage account",
			},
			Solutions: []string{
				"Verify the file exists: Azure Portal > Storage Account > Containers > Browse",
				"Check dynamic path expressions: use Debug mode to see resolved values",
				"Add a GetMetadata activity to check file existence before Copy",
				"Add a Validation activity to wait for file arrival with timeout",
				"Verify the container/file system name is exactly correct (case-sensitive)",
				"Check upstream pipeline or process completed successfully",
			},
			Prevention: []string{
				"Always use GetMetadata or Validation activities before file operations",
				"Implement file arrival SLAs with monitoring",
				"Add retry logic with Wait activities for delayed files",
				"Use event triggers based on file creation events",
				"Log expected vs actual file paths for debugging",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/control-flow-validation-activity"},
		},
		{
			ID:          "dq_schema_mismatch",
			Category:    CategorySchema,
			Severity:    SeverityHigh,
			Title:       "Schema/Column Mismatch Error",
			Pattern:     `schema|column.*not found|mapping.*invalid|ColumnNotFound|InvalidColumn|The column .* cannot be found|type mismatch|data type`,
			Description: "The source data schema doesn't match the expected schema defined in the dataset or mapping, causing copy or data flow failures.",
			Causes: []string{
				"Source data has new/renamed/removed columns",
				"Column mapping references non-existent columns",
				"Data type incompatibility between source and sink",
				"Schema drift in the source system",
				"Header row missing or incorrectly detected in CSV files",
				"Encoding issues causing column names to be garbled",
			},
			Solutions: []string{
				"Compare source schema with dataset definition",
				"Enable schema drift in data flows to handle dynamic schemas",
				"Update the column mapping in the copy activity",
				"Use 'Import Schema' button to refresh the dataset schema",
				"Add explicit data type conversions in the mapping",
				"Check CSV delimiter settings and header row configuration",
			},
			Prevention: []string{
				"Enable schema drift tolerance in data flows",
				"Implement schema validation as a pre-check activity",
				"Document expected schemas and set up change detection alerts",
				"Use schema-on-read formats (e.g., Parquet with schema evolution)",
			},
			EstimatedFixTime: "15-60 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/copy-activity-schema-and-type-mapping"},
		},
		{
			ID:          "dq_data_truncation",
			Category:    CategoryDataQuality,
			Severity:    SeverityMedium,
			Title:       "Data Truncation Error",
			Pattern:     `truncat|String or binary data would be truncated|data too long|value too large|overflow`,
			Description: "Data from the source exceeds the maximum size of the destination column, causing a truncation error.",
			Causes: []string{
				"Source data length exceeds destination column size",
				"Numeric value exceeds destination column precision",
				"Unicode data being stored in non-Unicode column",
				"Date/time format incompatibility",
			},
			Solutions: []string{
				"Increase the destination column size (ALTER TABLE)",
				"Add a data flow transformation to truncate/validate data before loading",
				"Use CAST/CONVERT in a pre-copy stored procedure",
				"Enable fault tolerance to skip incompatible rows",
				"Identify the offending rows: SELECT MAX(LEN(column)) FROM source",
			},
			Prevention: []string{
				"Design destination tables with adequate column sizes",
				"Add data validation transformations in data flows",
				"Enable copy activity fault tolerance with logging",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/copy-activity-fault-tolerance"},
		},
		{
			ID:          "dq_encoding",
			Category:    CategoryDataQuality,
			Severity:    SeverityMedium,
			Title:       "Character Encoding / Invalid Data Format",
			Pattern:     `encoding|invalid character|malformed|corrupt|codec|UTF-8|parse error|InvalidDataField`,
			Description: "The source data contains characters or formatting that cannot be properly decoded or parsed.",
			Causes: []string{
				"File encoding doesn't match the configured encoding (e.g., UTF-8 vs Latin-1)",
				"BOM (Byte Order Mark) present or missing",
				"Corrupted file from upload or transfer process",
				"Invalid JSON/XML structure",
				"Mixed line endings (CRLF/LF) causing parsing issues",
			},
			Solutions: []string{
				"Specify the correct encoding in the dataset properties",
				"Use a hex editor or notepad++ to check the actual file encoding",
				"Validate file integrity (compare checksums with source)",
				"For JSON: validate structure using a JSON validator tool",
				"For CSV: check delimiter consistency across all rows",
			},
			Prevention: []string{
				"Standardize file encoding to UTF-8 across all systems",
				"Add file validation activities at pipeline start",
				"Use schema-on-read formats (Parquet, Avro) to avoid encoding issues",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/supported-file-formats-and-compression-codecs"},
		},
		// Resource / quota
		{
			ID:          "res_out_of_memory",
			Category:    CategoryResource,
			Severity:    SeverityCritical,
			Title:       "Out of Memory Error (OOM)",
			Pattern:     `OutOfMemory|out of memory|DF-Executor-OutOfMemoryError|heap space|GC overhead|MemoryError`,
			Description: "The data flow or copy activity ran out of memory, causing it to fail. This typically occurs with large datasets or complex transformations.",
			Causes: []string{
				"Data flow processing dataset larger than allocated memory",
				"Too many columns or complex transformations",
				"Broadcast join with a large dataset",
				"Insufficient cluster size for the data volume",
				"Memory leak in custom code or expressions",
				"Skewed data causing one partition to be much larger than others",
			},
			Solutions: []string{
				"Increase the data flow cluster size (Core count)",
				"Use hash join instead of broadcast join for large tables",
				"Add partition transformations to distribute data evenly",
				"Reduce the number of columns early in the pipeline (select/project)",
				"Split large data flows into smaller, sequential steps",
				"Enable staging for copy activity with large datasets",
			},
			Prevention: []string{
				"Right-size clusters based on data volume",
				"Monitor memory usage in data flow debug mode",
				"Use optimized partition strategies for large datasets",
				"Implement data sampling for development/testing",
			},
			EstimatedFixTime: "30-90 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/data-flow-troubleshoot-guide"},
		},
		{
			ID:          "res_quota_exceeded",
			Category:    CategoryQuota,
			Severity:    SeverityHigh,
			Title:       "Quota / Rate Limit Exceeded",
			Pattern:     `quota|rate limit|429|TooManyRequests|throttl|concurrent|limit exceeded|exceeded.*limit`,
			Description: "The operation exceeded Azure resource quotas or API rate limits.",
			Causes: []string{
				"Too many concurrent pipeline runs",
				"Too many concurrent copy activities",
				"API rate limiting from the target service",
				"Data Integration Units (DIU) quota exceeded",
				"Azure subscription-level quotas hit",
			},
			Solutions: []string{
				"Reduce concurrent pipeline/activity execution",
				"Implement exponential backoff retry policies",
				"Request quota increase: Azure Portal > Subscriptions > Usage + quotas",
				"Reduce DIU count on copy activities",
				"Stagger pipeline schedules to avoid burst traffic",
				"Use batch operations instead of individual API calls",
			},
			Prevention: []string{
				"Monitor quota usage with Azure Monitor alerts",
				"Design pipelines with throttling in mind",
				"Use queue-based load leveling patterns",
				"Set up capacity planning reviews",
			},
			EstimatedFixTime: "15-60 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/data-factory-service-limits"},
		},
		{
			ID:          "res_disk_space",
			Category:    CategoryResource,
			Severity:    SeverityHigh,
			Title:       "Disk Space / Storage Exhausted",
			Pattern:     `disk space|OutOfDiskSpaceError|No space left|storage full|BlockCountExceedsLimitError`,
			Description: "The operation ran out of disk space on the integration runtime or exceeded blob storage block limits.",
			Causes: []string{
				"SHIR machine disk is full (temp files, logs)",
				"Blob storage block count limit (50,000 blocks) exceeded",
				"Staging area is full",
				"Large temp files from sorting/aggregation operations",
			},
			Solutions: []string{
				"Clean up disk space on SHIR machine",
				"Increase staging storage capacity",
				"Reduce file size by splitting into smaller chunks",
				"Use append blob or page blob for very large files",
				"Clear old pipeline run logs and temp files",
			},
			Prevention: []string{
				"Monitor disk space on SHIR machines",
				"Set up auto-cleanup for temp and log files",
				"Implement data archival strategies",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/data-flow-troubleshoot-guide"},
		},
		// Timeout
		{
			ID:          "timeout_activity",
			Category:    CategoryTimeout,
			Severity:    SeverityMedium,
			Title:       "Activity Timeout",
			Pattern:     `timeout|TimeoutException|activity timed out|execution expired|exceeded.*timeout`,
			Description: "An activity exceeded its configured timeout limit before completing.",
			Causes: []string{
				"Long-running query on the data source",
				"Large data volume taking longer than expected",
				"Resource contention on the target system",
				"Network congestion causing slow transfers",
				"Default timeout too short for the operation",
			},
			Solutions: []string{
				"Increase the activity timeout in pipeline settings",
				"Optimize the source query (add indexes, reduce scope)",
				"Increase Data Integration Units (DIU) for copy activities",
				"Split the operation into smaller batches with parallelism",
				"Check target system performance metrics",
			},
			Prevention: []string{
				"Set appropriate timeout values based on historical run times",
				"Monitor activity duration trends",
				"Implement incremental loading patterns",
				"Optimize queries before deploying to production",
			},
			EstimatedFixTime: "15-60 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/concepts-pipeline-execution-triggers"},
		},
		// Configuration
		{
			ID:          "config_linked_service",
			Category:    CategoryConfiguration,
			Severity:    SeverityMedium,
			Title:       "Linked Service Configuration Error",
			Pattern:     `linked service|connection string|InvalidConnectionString|IncorrectLinkedServiceConfiguration|connection.*invalid`,
			Description: "The linked service configuration is invalid, preventing connection to the data source.",
			Causes: []string{
				"Connection string format is incorrect",
				"Missing required connection properties",
				"Key Vault reference is invalid or inaccessible",
				"Integration runtime not assigned or unavailable",
				"Parameterized values not resolving correctly",
			},
			Solutions: []string{
				"Verify connection string format matches the connector documentation",
				"Test the connection using 'Test Connection' in ADF",
				"Check Key Vault access policies for ADF managed identity",
				"Verify the integration runtime is online and healthy",
				"Check parameter values in debug mode",
			},
			Prevention: []string{
				"Always test connections after configuration changes",
				"Use parameterized linked services with default values",
				"Monitor integration runtime health",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/concepts-linked-services"},
		},
		{
			ID:          "config_ir_offline",
			Category:    CategoryConfiguration,
			Severity:    SeverityCritical,
			Title:       "Integration Runtime Offline / Unavailable",
			Pattern:     `integration runtime|IR.*offline|IR.*unavailable|self-hosted.*not running|SHIROFFLINE`,
			Description: "The Self-hosted Integration Runtime is offline or cannot be reached by ADF.",
			Causes: []string{
				"SHIR service stopped on the host machine",
				"Host machine was restarted or is offline",
				"Network connectivity issue between ADF and SHIR",
				"SHIR version is outdated and incompatible",
				"Windows service crashed due to resource exhaustion",
			},
			Solutions: []string{
				"Check SHIR status: Open SHIR config manager on the host machine",
				"Restart the 'Microsoft Integration Runtime' Windows service",
				"Verify the machine is running and accessible",
				"Update SHIR to the latest version",
				"Check SHIR diagnostic logs in Event Viewer",
			},
			Prevention: []string{
				"Set up SHIR monitoring and auto-restart",
				"Use high-availability SHIR with multiple nodes",
				"Monitor SHIR health from Azure Monitor",
				"Keep SHIR updated to the latest version",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/create-self-hosted-integration-runtime"},
		},
		{
			ID:          "config_expression",
			Category:    CategoryConfiguration,
			Severity:    SeverityMedium,
			Title:       "Expression / Parameter Evaluation Error",
			Pattern:     `expression|parameter|InvalidTemplate|ParameterParseError|dynamic content|@\{|concat|pipeline\(\)\.parameters`,
			Description: "A pipeline expression or parameter reference failed to evaluate correctly.",
			Causes: []string{
				"Syntax error in dynamic content expression",
				"Referencing a parameter that doesn't exist",
				"Type mismatch in expression operations",
				"Missing quotes around string values in expressions",
				"Nested expression depth too deep",
			},
			Solutions: []string{
				"Validate expressions using the expression builder with sample data",
				"Check that all referenced parameters are defined with correct types",
				"Use @string() to ensure string type in concatenations",
				"Test expressions step-by-step in a debug session",
				"Simplify complex expressions by breaking into Set Variable activities",
			},
			Prevention: []string{
				"Test all expressions in debug mode before publishing",
				"Use consistent naming conventions for parameters",
				"Document expected parameter types and values",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/control-flow-expression-language-functions"},
		},
		// Data flow
		{
			ID:          "df_broadcast_failure",
			Category:    CategoryResource,
			Severity:    SeverityHigh,
			Title:       "Data Flow Broadcast Timeout / Failure",
			Pattern:     `BroadcastTimeout|BroadcastFailure|broadcast.*timeout|DF-Executor-BroadcastTimeout`,
			Description: "A broadcast join in the data flow timed out because the broadcast dataset was too large to distribute to all worker nodes.",
			Causes: []string{
				"Dataset being broadcast is too large (>8GB compressed)",
				"Insufficient cluster resources for the broadcast",
				"Network issues between Spark nodes",
				"Complex transformations before the join",
			},
			Solutions: []string{
				"Switch from Broadcast join to Hash/Sort Merge join",
				"Increase data flow cluster size",
				"Filter or aggregate the smaller dataset before joining",
				"Set broadcast timeout to 'None' and let Spark decide",
				"Increase broadcast threshold in optimization settings",
			},
			Prevention: []string{
				"Profile data sizes before choosing join strategy",
				"Use 'Auto' join optimization to let Spark choose",
				"Monitor data volume trends",
			},
			EstimatedFixTime: "20-60 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/data-flow-troubleshoot-guide"},
		},
		{
			ID:          "df_spark_error",
			Category:    CategoryResource,
			Severity:    SeverityHigh,
			Title:       "Spark Cluster / Internal Server Error",
			Pattern:     `InternalServerError|Spark|cluster.*failed|DF-Executor-InternalServerError|SystemErrorSynapseSparkJobFailed|An internal error occurred`,
			Description: "The data flow's underlying Spark cluster encountered an internal error.",
			Causes: []string{
				"Transient Spark infrastructure issue",
				"Cluster startup failure due to capacity constraints",
				"Incompatible library versions",
				"Azure region capacity limitations",
			},
			Solutions: []string{
				"Retry the pipeline run (transient failures often resolve on retry)",
				"Change the data flow compute type or cluster size",
				"Check Azure service health for the region",
				"Use TTL (time-to-live) to keep warm clusters",
			},
			Prevention: []string{
				"Set retry policies on data flow activities",
				"Use reserved capacity for critical pipelines",
				"Monitor Azure service health dashboard",
			},
			EstimatedFixTime: "5-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/data-flow-troubleshoot-guide"},
		},
		// Copy activity
		{
			ID:          "copy_user_error",
			Category:    CategoryConfiguration,
			Severity:    SeverityMedium,
			Title:       "Copy Activity User Error",
			Pattern:     `UserErrorFileNotFound|UserError|ErrorCode=User|Type=Microsoft.DataTransfer`,
			Description: "The copy activity failed due to a user-configurable issue rather than a system error.",
			Causes: []string{
				"Incorrect file path or connection settings",
				"Source data format doesn't match dataset configuration",
				"Missing required parameters or properties",
				"Permissions issue on source or sink",
				"Incompatible data types between source and sink",
			},
			Solutions: []string{
				"Review the full error message for specific ErrorCode",
				"Verify dataset configuration (file path, format, delimiter)",
				"Test the linked service connection",
				"Check permissions on both source and sink",
				"Validate data using a preview in ADF",
			},
			Prevention: []string{
				"Use GetMetadata to validate source before copy",
				"Add data preview validation in debug runs",
				"Document all dataset configurations",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/copy-activity-overview"},
		},
		{
			ID:          "copy_jre_not_found",
			Category:    CategoryConfiguration,
			Severity:    SeverityHigh,
			Title:       "Java Runtime Not Found on SHIR",
			Pattern:     `JreNotFound|Java Runtime Environment cannot be found|20000`,
			Description: "The Self-hosted Integration Runtime cannot find Java Runtime, required for Parquet/ORC file operations.",
			Causes: []string{
				"Java Runtime not installed on SHIR machine",
				"JAVA_HOME environment variable not set correctly",
				"Wrong Java version installed (32-bit vs 64-bit)",
			},
			Solutions: []string{
				"Install Java Runtime (JRE 8 or later) on the SHIR machine",
				"Set JAVA_HOME environment variable to the JRE installation path",
				"Ensure 64-bit JRE is installed for 64-bit SHIR",
				"Restart the Integration Runtime service after installing Java",
			},
			Prevention: []string{
				"Include Java installation in SHIR setup checklist",
				"Monitor SHIR prerequisites in regular health checks",
			},
			EstimatedFixTime: "15-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/format-parquet"},
		},
		// ADLS Gen2
		{
			ID:          "adls_invalid_status",
			Category:    CategoryConnectivity,
			Severity:    SeverityHigh,
			Title:       "ADLS Gen2 Operation Returned Invalid Status Code",
			Pattern:     `ADLS Gen2 operation failed|invalid status code|StorageAccountNotFound|ContainerNotFound|FilesystemNotFound`,
			Description: "An operation against Azure Data Lake Storage Gen2 failed with an unexpected HTTP status code.",
			Causes: []string{
				"Storage account doesn't exist or is in a different subscription",
				"Container/filesystem doesn't exist",
				"Firewall rules blocking ADF access",
				"Account key or SAS token is invalid/expired",
				"Soft delete or versioning causing unexpected behavior",
			},
			Solutions: []string{
				"Verify storage account exists and is accessible",
				"Create the container/filesystem if it doesn't exist",
				"Add ADF's managed identity or IPs to storage firewall exceptions",
				"Regenerate and update the account key or SAS token",
				"Check the full HTTP status code for specific error details",
			},
			Prevention: []string{
				"Use managed identity authentication for ADLS",
				"Set up storage account health monitoring",
				"Use terraform/ARM to ensure infrastructure consistency",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-azure-data-lake-storage"},
		},
		// SQL
		{
			ID:          "sql_deadlock",
			Category:    CategoryDataQuality,
			Severity:    SeverityHigh,
			Title:       "SQL Deadlock / Lock Timeout",
			Pattern:     `deadlock|lock request time out|blocked|1205|Lock escalation`,
			Description: "SQL operations are blocked by concurrent locks, causing deadlocks or lock timeouts.",
			Causes: []string{
				"Concurrent writes to the same table/rows",
				"Long-running transactions holding locks",
				"Lock escalation from row to table level",
				"Missing indexes causing table scans",
			},
			Solutions: []string{
				"Implement retry logic for deadlock errors (error 1205)",
				"Optimize queries to minimize lock duration",
				"Add appropriate indexes to reduce table scans",
				"Use NOLOCK or READ UNCOMMITTED for read operations where appropriate",
				"Schedule conflicting operations at different times",
			},
			Prevention: []string{
				"Design table structures to minimize contention",
				"Use batch inserts instead of row-by-row operations",
				"Monitor lock wait statistics",
			},
			EstimatedFixTime: "20-60 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-azure-sql-database"},
		},
		{
			ID:          "sql_firewall",
			Category:    CategoryConnectivity,
			Severity:    SeverityHigh,
			Title:       "SQL Server Firewall Rule Blocking Access",
			Pattern:     `firewall|40615|is not allowed to access the server|denied by the server firewall|Client IP address is not authorized`,
			Description: "The SQL Server firewall is blocking connections from the ADF integration runtime's IP address.",
			Causes: []string{
				"ADF's IP addresses not in SQL Server firewall rules",
				"Azure services access not enabled",
				"Private endpoint not configured for private connectivity",
				"IP address changed due to Azure IR scaling",
			},
			Solutions: []string{
				"Add ADF's IP range to SQL firewall: Portal > SQL Server > Networking",
				"Enable 'Allow Azure services and resources to access this server'",
				"Use managed private endpoints for secure connectivity",
				"Use managed VNet integration runtime",
			},
			Prevention: []string{
				"Use managed private endpoints for all production connections",
				"Monitor firewall rule changes with Azure Policy",
				"Document all required firewall configurations",
			},
			EstimatedFixTime: "5-15 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/azure-sql/database/firewall-configure"},
		},
		// Pipeline execution
		{
			ID:          "pipe_circular_dependency",
			Category:    CategoryConfiguration,
			Severity:    SeverityMedium,
			Title:       "Pipeline Circular Dependency",
			Pattern:     `circular|dependency|cycle detected|recursive`,
			Description: "The pipeline contains circular activity dependencies, preventing execution.",
			Causes: []string{
				"Activity A depends on Activity B which depends on Activity A",
				"Complex conditional branches creating loops",
				"Incorrect 'Depends On' configuration",
			},
			Solutions: []string{
				"Review the pipeline dependency graph in the visual editor",
				"Remove or restructure circular dependencies",
				"Use ForEach or Until loops instead of circular dependencies",
			},
			Prevention: []string{
				"Plan pipeline flow on paper/whiteboard before building",
				"Use naming conventions that reflect execution order",
			},
			EstimatedFixTime: "15-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/concepts-pipelines-activities"},
		},
		{
			ID:          "pipe_trigger_failure",
			Category:    CategoryConfiguration,
			Severity:    SeverityMedium,
			Title:       "Trigger Failure / Missed Trigger",
			Pattern:     `trigger|scheduled|tumbling window|event trigger|TriggerFailed`,
			Description: "A pipeline trigger failed to fire or execute the pipeline.",
			Causes: []string{
				"Trigger is stopped/not started",
				"Schedule cron expression is incorrect",
				"Event-based trigger misconfigured (path/pattern)",
				"Previous tumbling window still running",
				"Dependency chain in tumbling window not met",
			},
			Solutions: []string{
				"Verify trigger status: ADF > Manage > Triggers",
				"Check trigger run history for specific errors",
				"Validate schedule expression against expected times",
				"For event triggers: verify the event subscription in Azure Portal",
				"For tumbling windows: check previous window run status",
			},
			Prevention: []string{
				"Monitor trigger health with Azure Monitor alerts",
				"Set up dead-letter notifications for missed triggers",
				"Test triggers thoroughly in debug before publishing",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/concepts-pipeline-execution-triggers"},
		},
		// ODBC
		{
			ID:          "net_odbc_invalid",
			Category:    CategoryConfiguration,
			Severity:    SeverityMedium,
			Title:       "ODBC Invalid Query / Connection Error",
			Pattern:     `ODBC|9611|UserErrorOdbcInvalidQueryString|OdbcOperationFailed|driver|DSN`,
			Description: "An ODBC-based connection or query failed, typically with non-Microsoft data sources.",
			Causes: []string{
				"Invalid SQL query syntax for the target data source",
				"ODBC driver not installed on SHIR machine",
				"DSN not configured properly",
				"Query contains unsupported functions for the target system",
			},
			Solutions: []string{
				"Validate the query directly against the data source",
				"Install the correct ODBC driver on the SHIR machine",
				"Verify DSN configuration using Windows ODBC Data Sources",
				"Use Script activity for non-query scripts",
			},
			Prevention: []string{
				"Test queries directly before using in pipeline",
				"Document required ODBC drivers for each data source",
				"Use parameterized queries to avoid injection issues",
			},
			EstimatedFixTime: "15-45 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-odbc"},
		},
		// Cosmos DB
		{
			ID:          "cosmos_key_invalid",
			Category:    CategoryAuthentication,
			Severity:    SeverityHigh,
			Title:       "Cosmos DB Invalid Account Key / Configuration",
			Pattern:     `Cosmos|CosmosDb|InvalidAccountKey|InvalidAccountConfiguration|DF-Cosmos`,
			Description: "The Cosmos DB connection failed due to invalid account key or configuration.",
			Causes: []string{
				"Account key was rotated and not updated in linked service",
				"Wrong database or container name",
				"Incorrect connection mode (Gateway vs Direct)",
				"Cosmos DB account is in a different region or disabled",
			},
			Solutions: []string{
				"Update the account key from Azure Portal > Cosmos DB > Keys",
				"Verify database and container names are exactly correct",
				"Try switching connection mode between Gateway and Direct",
				"Check Cosmos DB account status in Azure Portal",
			},
			Prevention: []string{
				"Store Cosmos DB keys in Azure Key Vault with rotation alerts",
				"Use managed identity authentication where supported",
			},
			EstimatedFixTime: "10-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-azure-cosmos-db"},
		},
		// Mapping data flow
		{
			ID:          "df_partition_error",
			Category:    CategoryConfiguration,
			Severity:    SeverityMedium,
			Title:       "Data Flow Partition / File Error",
			Pattern:     `PartitionDirectoryError|InvalidPartitionFileNames|partition|InvalidSparkFolder`,
			Description: "Data flow failed due to invalid partitioning configuration or file names in the output.",
			Causes: []string{
				"Invalid characters in partition column values",
				"Partition directories already exist with incompatible format",
				"Spark folder structure doesn't match expected format",
			},
			Solutions: []string{
				"Clean partition column values (remove special characters)",
				"Delete existing partition directories before rewrite",
				"Specify explicit partition pattern in sink settings",
				"Use 'Clear the folder' option in sink settings",
			},
			Prevention: []string{
				"Validate partition column values before writing",
				"Use deterministic partition strategies",
			},
			EstimatedFixTime: "15-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/data-flow-troubleshoot-guide"},
		},
		// PostgreSQL / MySQL
		{
			ID:          "pg_connection_failed",
			Category:    CategoryConnectivity,
			Severity:    SeverityHigh,
			Title:       "PostgreSQL / MySQL Connection Failure",
			Pattern:     `PostgreSQL|MySQL|pg_hba|28P01|28000|password authentication failed for user|Failed to connect.*flexible server`,
			Description: "Connection to PostgreSQL or MySQL failed due to authentication or network configuration.",
			Causes: []string{
				"User credentials are incorrect",
				"pg_hba.conf doesn't allow connections from ADF's IP",
				"Encryption method mismatch",
				"Flexible server is in private access mode",
			},
			Solutions: []string{
				"Verify username and password in the linked service",
				"Add ADF IP to the server's firewall rules",
				"Check encryption settings match the server configuration",
				"For private access: use Self-hosted IR within the same VNet",
			},
			Prevention: []string{
				"Document authentication requirements for each database",
				"Use managed private endpoints for private access servers",
			},
			EstimatedFixTime: "15-30 minutes",
			Documentation:    []string{"https://learn.microsoft.com/en-us/azure/data-factory/connector-azure-database-for-postgresql"},
		},
	}
}
